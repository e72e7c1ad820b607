package jwt

import "time"

type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"planmeter"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`
}

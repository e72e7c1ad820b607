package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/planmeter/pkg/validator"
)

// Plan is a metered service tier.
type Plan struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description,omitempty" yaml:"description"`
	Price            float64   `json:"price" yaml:"price"`
	SpeedMbps        float64   `json:"speedMbps" yaml:"speedMbps"`
	DataQuotaGB      float64   `json:"dataQuotaGB" yaml:"dataQuotaGB"`
	Features         []string  `json:"features" yaml:"features"`
	AutoRenewDefault bool      `json:"autoRenew" yaml:"autoRenew"`
	CreatedAt        time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"-"`
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (p Plan) Clone() Plan {
	p.Features = slices.Clone(p.Features)
	return p
}

// NameKey is the form plan names are compared in for uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PlanInput carries administrator supplied attributes for create and update.
type PlanInput struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	SpeedMbps   float64  `json:"speedMbps" yaml:"speedMbps"`
	DataQuotaGB float64  `json:"dataQuotaGB" yaml:"dataQuotaGB"`
	Features    []string `json:"features" yaml:"features"`
	AutoRenew   *bool    `json:"autoRenew,omitempty" yaml:"autoRenew"`
}

// Normalize trims text fields in place.
func (in *PlanInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Features = slices.Clone(in.Features)
	for i, f := range in.Features {
		in.Features[i] = strings.TrimSpace(f)
	}
}

// Validate checks the input after Normalize.
func (in PlanInput) Validate() error {
	return validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, 100),
		validator.MaxLen("description", in.Description, 1000),
		validator.Min("price", in.Price, 0),
		validator.Positive("speedMbps", in.SpeedMbps),
		validator.Positive("dataQuotaGB", in.DataQuotaGB),
		validator.NoBlankItems("features", in.Features),
	)
}

func (in PlanInput) apply(p *Plan) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.SpeedMbps = in.SpeedMbps
	p.DataQuotaGB = in.DataQuotaGB
	p.Features = slices.Clone(in.Features)
	if p.Features == nil {
		p.Features = []string{}
	}
	if in.AutoRenew != nil {
		p.AutoRenewDefault = *in.AutoRenew
	}
}

// SortByPrice orders plans by ascending price, breaking ties by name.
func SortByPrice(plans []Plan) {
	slices.SortStableFunc(plans, func(a, b Plan) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

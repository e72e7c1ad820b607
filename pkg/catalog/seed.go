package catalog

import (
	"context"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Plans []PlanInput `yaml:"plans"`
}

// LoadYAML decodes a plan seed document:
//
//	plans:
//	  - name: Basic
//	    price: 10
//	    speedMbps: 50
//	    dataQuotaGB: 100
//	    features: [email support]
func LoadYAML(r io.Reader) ([]PlanInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Join(ErrFailedToDecode, err)
	}
	return f.Plans, nil
}

// Seed creates every plan whose name is not taken yet and returns how many
// were created. It stops at the first other error.
func Seed(ctx context.Context, svc Service, inputs []PlanInput) (int, error) {
	created := 0
	for _, in := range inputs {
		_, err := svc.Create(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrPlanNameTaken):
		default:
			return created, err
		}
	}
	return created, nil
}

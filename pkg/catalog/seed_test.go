package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
)

const seedYAML = `
plans:
  - name: Basic
    description: Entry tier
    price: 10
    speedMbps: 50
    dataQuotaGB: 100
    features: [email support]
  - name: Pro
    price: 30
    speedMbps: 500
    dataQuotaGB: 1000
    autoRenew: false
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	inputs, err := catalog.LoadYAML(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Basic", inputs[0].Name)
	assert.Equal(t, []string{"email support"}, inputs[0].Features)
	assert.Nil(t, inputs[0].AutoRenew)
	require.NotNil(t, inputs[1].AutoRenew)
	assert.False(t, *inputs[1].AutoRenew)
}

func TestLoadYAML_Errors(t *testing.T) {
	t.Parallel()

	inputs, err := catalog.LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, inputs)

	_, err = catalog.LoadYAML(strings.NewReader("plans:\n  - nmae: typo\n"))
	assert.ErrorIs(t, err, catalog.ErrFailedToDecode)
}

func TestSeed_SkipsExistingNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService()

	inputs, err := catalog.LoadYAML(strings.NewReader(seedYAML))
	require.NoError(t, err)

	created, err := catalog.Seed(ctx, svc, inputs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = catalog.Seed(ctx, svc, inputs)
	require.NoError(t, err)
	assert.Zero(t, created)

	_, err = catalog.Seed(ctx, svc, []catalog.PlanInput{{Name: "Broken"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidPlan)
}

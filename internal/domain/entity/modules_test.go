package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

func TestMRPConfig_SubBOMsAcotadas(t *testing.T) {
	cases := []struct {
		cfg              entity.MRPConfig
		components, subs int
	}{
		{entity.MRPConfig{ComponentsPerBOM: 3, SubBOMsPerProduct: 2}, 3, 2},
		{entity.MRPConfig{ComponentsPerBOM: 2, SubBOMsPerProduct: 5}, 5, 2},
		{entity.MRPConfig{}, 1, 0},
		{entity.MRPConfig{ComponentsPerBOM: -1, SubBOMsPerProduct: -3}, 1, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.components, tc.cfg.Components())
		assert.Equal(t, tc.subs, tc.cfg.SubBOMs())
		assert.LessOrEqual(t, tc.cfg.SubBOMs(), max(tc.cfg.ComponentsPerBOM, 0))
	}
}

func TestModuleSelections_AtajoYObjeto(t *testing.T) {
	var sel entity.ModuleSelections
	err := json.Unmarshal([]byte(`{
		"sale": 3,
		"mrp": {"num_products": 1, "components_per_bom": 3, "sub_boms_per_product": 2},
		"project": 2,
		"hr_recruitment": {"jobs": 2, "candidates": 7},
		"account": null,
		"website": 4
	}`), &sel)
	require.NoError(t, err)

	assert.Equal(t, 3, sel.Sale)
	assert.Equal(t, entity.MRPConfig{NumProducts: 1, ComponentsPerBOM: 3, SubBOMsPerProduct: 2}, sel.MRP)
	assert.Equal(t, 2, sel.Project.Projects)
	assert.Equal(t, entity.RecruitmentConfig{Jobs: 2, Candidates: 7}, sel.Recruitment)
	assert.False(t, sel.Requested(entity.ModuleAccount))
	assert.True(t, sel.Requested(entity.ModuleMRP))
	assert.False(t, sel.Requested(entity.ModuleCRM))
}

func TestModuleSelections_ValorInvalido(t *testing.T) {
	var sel entity.ModuleSelections
	err := json.Unmarshal([]byte(`{"crm": "viele"}`), &sel)
	assert.ErrorContains(t, err, `módulo "crm"`)
}

func TestNameBank_Fallback(t *testing.T) {
	var empty entity.NameBank
	assert.Equal(t, "x", empty.Name(entity.NamesTasks, 0, "x"))

	bank := entity.NewNameBank(&entity.NameSuggestions{Projects: []string{" Umbau ", "", "Neubau"}})
	assert.Equal(t, 2, bank.Len(entity.NamesProjects))
	assert.Equal(t, "Umbau", bank.Name(entity.NamesProjects, 0, "x"))
	assert.Equal(t, "Neubau", bank.Name(entity.NamesProjects, 1, "x"))
	assert.Equal(t, "x", bank.Name(entity.NamesProjects, 2, "x"))
}

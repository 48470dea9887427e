package rules

import (
	"encoding/json"
	"time"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

// SeedDevCatalogue populates the memory store with a small IL and CA rule
// catalogue so the service runs without postgres. Income figures are annual
// cents against the 2025 poverty table.
func SeedDevCatalogue(s *MemoryStore) {
	effective := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	il := domain.JurisdictionCode("IL")
	SeedJurisdiction(s, il, "2025.1", effective, []SeedProgram{
		{
			Code: "MEDICAID_MAGI", Name: "Medicaid (MAGI)", Category: models.CategoryMAGI,
			// 138% of the one-person 2025 baseline.
			Logic: `{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":2159700}}`,
		},
		{
			Code: "SNAP", Name: "Supplemental Nutrition Assistance Program", Category: models.CategoryOther,
			Logic: `{"type":"logical","op":"and","operands":[
				{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":2034500}},
				{"type":"var","key":"isResident"}
			]}`,
		},
		{
			Code: "MPE", Name: "Medicaid Presumptive Eligibility for Pregnant Women", Category: models.CategoryPregnancy,
			Logic: `{"type":"logical","op":"and","operands":[
				{"type":"var","key":"isPregnant"},
				{"type":"compare","op":"le","left":{"type":"var","key":"income"},"right":{"type":"literal","value":3286500}}
			]}`,
		},
	})

	ca := domain.JurisdictionCode("CA")
	SeedJurisdiction(s, ca, "2025.1", effective, []SeedProgram{
		{
			Code: "MEDI_CAL", Name: "Medi-Cal", Category: models.CategoryMAGI,
			Logic: `{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":2159700}}`,
		},
		{
			Code: "CALFRESH", Name: "CalFresh", Category: models.CategoryOther,
			Logic: `{"type":"logical","op":"and","operands":[
				{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":3130000}},
				{"type":"var","key":"isResident"}
			]}`,
		},
	})
}

// SeedProgram describes one program and its rule logic for seeding.
type SeedProgram struct {
	Code     string
	Name     string
	Category models.ProgramCategory
	Logic    string
	Priority int
}

// SeedJurisdiction adds one active rule-set version holding a rule per
// program.
func SeedJurisdiction(s *MemoryStore, jurisdiction domain.JurisdictionCode, label string, effective time.Time, programs []SeedProgram) *models.RuleSetVersion {
	v := &models.RuleSetVersion{
		ID:            domain.NewRuleSetVersionID(),
		Jurisdiction:  jurisdiction,
		Version:       label,
		EffectiveDate: effective,
		Status:        models.RuleSetStatusActive,
	}
	for i, p := range programs {
		program := &models.ProgramDefinition{
			ID:           domain.NewProgramID(),
			Jurisdiction: jurisdiction,
			Code:         p.Code,
			Name:         p.Name,
			Category:     p.Category,
			Active:       true,
		}
		priority := p.Priority
		if priority == 0 {
			priority = (i + 1) * 10
		}
		v.Rules = append(v.Rules, &models.EligibilityRule{
			ID:        domain.NewRuleID(),
			VersionID: v.ID,
			ProgramID: program.ID,
			Priority:  priority,
			Logic:     json.RawMessage(p.Logic),
			Program:   program,
		})
	}
	s.AddVersion(v)
	return v
}

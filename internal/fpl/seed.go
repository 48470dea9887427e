package fpl

import "benefind/internal/eligibility/models"

// SeedDevTable loads the 2024 and 2025 federal baselines into the memory
// store for dev mode. Amounts are annual cents for the 48 contiguous states:
// a first-person amount plus a flat per-person increment.
func SeedDevTable(s *MemoryStore) {
	seedYear(s, 2024, 1506000, 538000)
	seedYear(s, 2025, 1565000, 550000)
}

func seedYear(s *MemoryStore, year int, firstPersonCents, perPersonCents int64) {
	for size := 1; size <= 8; size++ {
		s.Put(&models.FederalPovertyLevel{
			Year:          year,
			HouseholdSize: size,
			AnnualCents:   firstPersonCents + int64(size-1)*perPersonCents,
		})
	}
}

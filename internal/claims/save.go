package claims

import (
	"fmt"

	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
)

// Save writes <name>.claims.csv and <name>.claims.jsonl
func Save(claims []model.Claim, name string) error {
	fields, err := export.Fields(claims)
	if err != nil {
		return fmt.Errorf("collect claim fields: %w", err)
	}
	if err := export.WriteRecordsCSV(name+".claims.csv", fields, claims); err != nil {
		return fmt.Errorf("save claims csv: %w", err)
	}
	if err := export.WriteJSONL(name+".claims.jsonl", claims); err != nil {
		return fmt.Errorf("save claims jsonl: %w", err)
	}
	return nil
}

// TrueProbability is the fraction of claims with veracity true, 0 for none
func TrueProbability(claims []model.Claim) float64 {
	if len(claims) == 0 {
		return 0
	}
	n := 0
	for _, c := range claims {
		if c.Veracity {
			n++
		}
	}
	return float64(n) / float64(len(claims))
}

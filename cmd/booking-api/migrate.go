package main

import (
	"fmt"
	"os"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

var seedFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db and optionally seed the translator records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, flush, err := setup()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		defer flush()

		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		zap.S().Info("Db migrated")

		if seedFile == "" {
			return nil
		}

		translators, err := readTranslators(seedFile)
		if err != nil {
			return err
		}
		if err := s.Seed(cmd.Context(), translators); err != nil {
			return fmt.Errorf("seeding translators: %w", err)
		}

		zap.S().Infow("translators seeded", "count", len(translators), "file", seedFile)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&seedFile, "seed", "", "YAML file listing the translators and their certifications")
}

// readTranslators parses a seed file of the form:
//
//	- id: t-1
//	  name: Jane
//	  phone: "+15550100"
//	  certifications:
//	    - language_pair: en-fr
func readTranslators(path string) (model.TranslatorList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var translators model.TranslatorList
	if err := yaml.Unmarshal(data, &translators); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	for i := range translators {
		if translators[i].ID == "" {
			return nil, fmt.Errorf("seed entry %d has no id", i)
		}
		for j := range translators[i].Certifications {
			translators[i].Certifications[j].TranslatorID = translators[i].ID
		}
	}
	return translators, nil
}

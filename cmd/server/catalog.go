package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/repository"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

// catalogItem is one entry of an equipment catalog file:
//
//	equipment:
//	  - name: Microscope
//	    category: optics
//	    totalQuantity: 5
type catalogItem struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Image         string `yaml:"image"`
	Category      string `yaml:"category"`
	TotalQuantity int    `yaml:"totalQuantity"`
}

type catalog struct {
	Equipment []catalogItem `yaml:"equipment"`
}

func parseCatalog(r io.Reader) ([]catalogItem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode catalog")
	}
	for i, it := range c.Equipment {
		if it.Name == "" || it.Category == "" {
			return nil, errors.Errorf("item %d: name and category are required", i+1)
		}
		if it.TotalQuantity < 0 {
			return nil, errors.Errorf("item %d (%s): totalQuantity cannot be negative", i+1, it.Name)
		}
	}
	return c.Equipment, nil
}

type equipmentCreator interface {
	Create(ctx context.Context, actor model.Actor, in service.EquipmentInput) (model.Equipment, error)
}

// importCatalog creates every item and stops at the first failure. It
// returns the number of items created.
func importCatalog(ctx context.Context, svc equipmentCreator, items []catalogItem, out io.Writer) (int, error) {
	importer := model.Actor{ID: "catalog-import", Role: model.RoleAdmin}
	for i, it := range items {
		e, err := svc.Create(ctx, importer, service.EquipmentInput{
			Name:          it.Name,
			Description:   it.Description,
			Image:         it.Image,
			Category:      it.Category,
			TotalQuantity: it.TotalQuantity,
		})
		if err != nil {
			return i, errors.Wrapf(err, "import %q", it.Name)
		}
		fmt.Fprintf(out, "%s\t%s\t%d\n", e.ID, e.Name, e.TotalQuantity)
	}
	return len(items), nil
}

func newImportEquipmentCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-equipment",
		Short: "Bulk create equipment from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrap(err, "open catalog")
			}
			defer f.Close()
			items, err := parseCatalog(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, db, log, err := bootstrap(ctx, "import-equipment")
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewEquipmentService(repository.NewEquipmentRepo(db), log)
			n, err := importCatalog(ctx, svc, items, cmd.OutOrStdout())
			if err != nil {
				log.Error("import stopped", zap.Error(err), zap.Int("imported", n))
				return err
			}
			log.Info("catalog imported", zap.Int("items", n), zap.String("file", file))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

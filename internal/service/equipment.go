package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

type EquipmentInput struct {
	Name          string
	Description   string
	Image         string
	Category      string
	TotalQuantity int
}

type EquipmentService struct {
	store EquipmentStore
	log   *zap.Logger
}

func NewEquipmentService(store EquipmentStore, log *zap.Logger) *EquipmentService {
	return &EquipmentService{store: store, log: log.Named("equipment")}
}

func (s *EquipmentService) List(ctx context.Context, f model.EquipmentFilter) ([]model.Equipment, error) {
	return s.store.List(ctx, f)
}

func (s *EquipmentService) Get(ctx context.Context, id string) (model.Equipment, error) {
	return s.store.GetByID(ctx, id)
}

func (s *EquipmentService) Create(ctx context.Context, actor model.Actor, in EquipmentInput) (model.Equipment, error) {
	if !actor.Role.Can(model.CapEquipmentWrite) {
		return model.Equipment{}, errs.E(errs.ErrForbidden, "Not allowed to manage equipment")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return model.Equipment{}, errs.E(errs.ErrValidation, "Name and category are required")
	}
	if in.TotalQuantity < 0 {
		return model.Equipment{}, errs.E(errs.ErrValidation, "Total quantity cannot be negative")
	}
	e := model.Equipment{
		Name:          in.Name,
		Description:   in.Description,
		Image:         in.Image,
		Category:      in.Category,
		TotalQuantity: in.TotalQuantity,
	}
	if err := s.store.Create(ctx, &e); err != nil {
		return model.Equipment{}, err
	}
	s.log.Info("equipment created", zap.String("id", e.ID), zap.String("actor", actor.ID))
	return e, nil
}

func (s *EquipmentService) Update(ctx context.Context, actor model.Actor, id string, p model.EquipmentPatch) (model.Equipment, error) {
	if !actor.Role.Can(model.CapEquipmentWrite) {
		return model.Equipment{}, errs.E(errs.ErrForbidden, "Not allowed to manage equipment")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return model.Equipment{}, errs.E(errs.ErrValidation, "Name cannot be empty")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return model.Equipment{}, errs.E(errs.ErrValidation, "Category cannot be empty")
	}
	if p.TotalQuantity != nil && *p.TotalQuantity < 0 {
		return model.Equipment{}, errs.E(errs.ErrValidation, "Total quantity cannot be negative")
	}
	return s.store.Update(ctx, id, p)
}

func (s *EquipmentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Role.Can(model.CapEquipmentWrite) {
		return errs.E(errs.ErrForbidden, "Not allowed to manage equipment")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("equipment deleted", zap.String("id", id), zap.String("actor", actor.ID))
	return nil
}

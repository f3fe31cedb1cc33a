package container

import (
	app "armor-aim/internal/application"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

type Container struct {
	OperatorService *app.OperatorService
	AimService      *app.AimService
	Snapshots       port.SnapshotSource
}

func New(operatorRepo port.OperatorRepository, aim app.AimDeps, color entity.EnemyColor, snapshots port.SnapshotSource) (*Container, error) {
	operatorService := app.NewOperatorService(operatorRepo)
	aimService, err := app.NewAimService(aim, color)
	if err != nil {
		return nil, err
	}

	return &Container{
		OperatorService: operatorService,
		AimService:      aimService,
		Snapshots:       snapshots,
	}, nil
}

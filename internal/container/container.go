package container

import (
	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
}

func New(userRepo port.UserRepository, defaultVariant entity.ModelVariant, deps app.AnalysisDeps) *Container {
	userService := app.NewUserService(userRepo, deps.Directory, defaultVariant)
	analysisService := app.NewAnalysisService(deps)

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}
}

package router

import (
	userapp "github.com/abdulwahab5547/receiptify-api/internal/application"
	"github.com/abdulwahab5547/receiptify-api/internal/container"
	pginfra "github.com/abdulwahab5547/receiptify-api/internal/infrastructure/postgres"
	handlers "github.com/abdulwahab5547/receiptify-api/internal/interface/http"
	"github.com/abdulwahab5547/receiptify-api/internal/router/modules"
)

// InitModules builds the feature modules from container singletons and
// adds them to the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	svc := userapp.NewService(
		repo,
		container.GetJWT(),
		container.GetStorage(),
		container.GetLogger(),
		cfg.UploadTimeout,
	)

	userHandler := handlers.NewUserHandler(svc, container.GetLogger())
	uploadHandler := handlers.NewUploadHandler(svc, container.GetLogger(), cfg.MaxUploadBytes)
	emailHandler := handlers.NewEmailHandler(container.GetRabbitPub(), container.GetLogger(), cfg)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewUploadModule(uploadHandler, container.GetJWT()))
	r.Add(modules.NewEmailModule(emailHandler))
}

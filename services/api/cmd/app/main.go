package main

import (
	"unievent/pkg/config"
	"unievent/pkg/logger"
	apiApp "unievent/services/api/internal/app"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// @title           UniEvent API
// @version         1.0
// @description     Campus event feed: posts, likes, comments and accounts.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration: %v", err)
		panic(err)
	}

	app, err := apiApp.New(cfg, log)
	if err != nil {
		log.Error("Failed to initialize: %v", err)
		panic(err)
	}

	if err := app.Run(); err != nil {
		panic(err)
	}
}

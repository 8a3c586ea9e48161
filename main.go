package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/safestreet/internal/app"
)

// @title           SafeStreet API
// @version         1.0
// @description     SafeStreet signs users in with emailed one-time passwords and collects geotagged street photos.
// @contact.name    SafeStreet Support
// @contact.email   support@safestreet.app
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	application.Stop(ctx)
}

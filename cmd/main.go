// cmd/main.go
package main

import (
	"client-records-api/app"
)

// @title           Client Records API
// @version         1.0
// @description     Multi-tenant client-record management API with token-based sessions.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}

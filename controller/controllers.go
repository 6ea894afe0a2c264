// controller/controllers.go
package controller

import "github.com/bookhive/api/service"

// Controllers aggregates every controller handed to the router.
type Controllers struct {
	Auth *AuthController
	User *UserController
}

func InitializeControllers(authService service.IAuthService, userService service.IUserService) *Controllers {
	return &Controllers{
		Auth: NewAuthController(authService),
		User: NewUserController(userService),
	}
}

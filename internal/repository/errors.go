package repository

import "github.com/atinyakov/PlantCare/internal/apperr"

// Not-found errors carry the same message whether the row is missing or
// belongs to someone else.
var (
	errUserNotFound  = apperr.NotFound("User not found.")
	errPlantNotFound = apperr.NotFound("Plant not found.")
	errLogNotFound   = apperr.NotFound("Log not found.")

	errUsernameTaken = apperr.Invalid("username", "A user with that username already exists.")
)

package server

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"target-shooting/internal/scoring"
)

var (
	validatorOnce  sync.Once
	playerIDFormat = regexp.MustCompile(`^p[1-5]$`)
)

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("playerid", func(fl validator.FieldLevel) bool {
			return playerIDFormat.MatchString(fl.Field().String())
		})
		_ = engine.RegisterValidation("target", func(fl validator.FieldLevel) bool {
			_, err := scoring.PointsFor(int(fl.Field().Int()))
			return err == nil
		})
		_ = engine.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return scoring.Status(fl.Field().String()).Valid()
		})
	})
}

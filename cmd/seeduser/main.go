// cmd/seeduser creates or resets the first ADMIN user.
// Usage: SEED_EMAIL=... SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/leodymann/wi-api/internal/config"
	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	email := strings.ToLower(env("SEED_EMAIL", "admin@wimotos.com"))
	password := env("SEED_PASSWORD", "")
	name := env("SEED_NAME", "Administrador")
	if len(password) < 8 {
		log.Fatal("SEED_PASSWORD must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.BcryptCost)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	user := model.User{Name: name, Email: email, PasswordHash: string(hash), Role: model.RoleAdmin, Active: true}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "role", "active"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatalf("insert error: %v", err)
	}
	fmt.Printf("✅ Usuário '%s' criado/atualizado como ADMIN\n", email)
}

package handlers

import (
	"tasktracker/internal/repository"
	"tasktracker/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB     *pgxpool.Pool
	Tokens *service.TokenService
	Users  *repository.UserRepository
	Tasks  *repository.TaskRepository
	Audit  *service.AuditService
}

func NewHandler(db *pgxpool.Pool, tokens *service.TokenService) *Handler {
	return &Handler{
		DB:     db,
		Tokens: tokens,
		Users:  repository.NewUserRepository(db),
		Tasks:  repository.NewTaskRepository(db),
		Audit:  service.NewAuditService(db),
	}
}

// getUserID extracts the authenticated user id from the gin context.
func getUserID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

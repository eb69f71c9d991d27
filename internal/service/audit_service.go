package service

import (
	"context"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// AuditStore persists audit entries
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	Recent(ctx context.Context, userID int64, category string, limit int) ([]*domain.AuditLog, error)
}

// AuditService handles audit logging. A nil *AuditService discards everything.
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged and never returned.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	if s == nil {
		return
	}
	info := requestInfoFrom(ctx)
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        info.IP,
		UserAgent: info.UserAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogRegister logs an account creation
func (s *AuditService) LogRegister(ctx context.Context, userID int64) {
	s.Log(ctx, userID, domain.AuditActionRegister, domain.AuditCategoryAuth, nil)
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID int64) {
	s.Log(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, nil)
}

// LogLoginFailed logs a rejected login. userID is 0 when the email is unknown.
func (s *AuditService) LogLoginFailed(ctx context.Context, userID int64) {
	s.Log(ctx, userID, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, nil)
}

// LogTodo logs a todo mutation
func (s *AuditService) LogTodo(ctx context.Context, userID int64, action string, todoID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["todo_id"] = todoID

	s.Log(ctx, userID, action, domain.AuditCategoryTodo, details)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if s == nil {
		return nil, nil
	}
	return s.repo.Recent(ctx, userID, "", limit)
}

package notifycenter

import (
	"context"
	"sync"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

// StaticAuthorizer holds the authorization status in process.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	status domain.AuthorizationStatus
}

func NewStaticAuthorizer(status domain.AuthorizationStatus) *StaticAuthorizer {
	return &StaticAuthorizer{status: status}
}

func (a *StaticAuthorizer) AuthorizationStatus(_ context.Context) (domain.AuthorizationStatus, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, nil
}

func (a *StaticAuthorizer) SetAuthorization(_ context.Context, status domain.AuthorizationStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
	return nil
}

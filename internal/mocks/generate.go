// Package mocks provides mock implementations for testing the blackbox job engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
// This creates MockJobRepository with methods for all JobRepository interface methods:
// Create, GetByID, List, ClaimNext, MarkFinished, MarkError, Stats, StaleRunning, WaitForNotification
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/blackboxsec/blackbox/internal/core JobRepository

// Generate mock for RunRepository interface from internal/core package.
// This creates MockRunRepository with methods for all RunRepository interface methods:
// Start, Finish, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=run_repository_mock.go github.com/blackboxsec/blackbox/internal/core RunRepository

// Generate mock for HashResultRepository interface from internal/core package.
// This creates MockHashResultRepository with methods for all HashResultRepository interface methods:
// Create, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=hash_result_repository_mock.go github.com/blackboxsec/blackbox/internal/core HashResultRepository

// Generate mock for ProfileLogRepository interface from internal/core package.
// This creates MockProfileLogRepository with methods for all ProfileLogRepository interface methods:
// Append, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_log_repository_mock.go github.com/blackboxsec/blackbox/internal/core ProfileLogRepository

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Get, Set
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/blackboxsec/blackbox/internal/core CacheRepository

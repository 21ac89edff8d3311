package identity

import (
	"context"
	"strings"

	appaudit "github.com/inventa/backend/internal/application/audit"
	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/identity"
	"github.com/inventa/backend/internal/domain/shared"
)

// Default page sizes for user listings
const (
	DefaultPerPage = 10
	TrashedPerPage = 5
)

// UserService handles user account management.
// Mutations are recorded in the audit trail with the password hash redacted.
type UserService struct {
	userRepo identity.UserRepository
	recorder *appaudit.Recorder
	audits   *appaudit.QueryService
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, recorder *appaudit.Recorder, audits *appaudit.QueryService) *UserService {
	return &UserService{
		userRepo: userRepo,
		recorder: recorder,
		audits:   audits,
	}
}

func mutation(action audit.Action, actorID *uint64) appaudit.Mutation {
	return appaudit.Mutation{Table: identity.TableName, Action: action, ActorID: actorID}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, actorID *uint64, req CreateUserRequest) (*UserResponse, error) {
	var created *identity.User
	_, err := s.recorder.Record(ctx, mutation(audit.ActionCreate, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.UserRepo()
			if err := checkUnique(ctx, repo, req.Name, req.Email, 0); err != nil {
				return appaudit.Change{}, err
			}

			user, err := identity.NewUser(req.Name, req.Email, req.Password, req.PasswordConfirmation)
			if err != nil {
				return appaudit.Change{}, err
			}
			if err := repo.Create(ctx, user); err != nil {
				return appaudit.Change{}, err
			}

			created = user
			return appaudit.Change{EntityID: user.ID, After: user.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(*created)
	return &response, nil
}

// Update changes name and email, and the password when one is given
func (s *UserService) Update(ctx context.Context, actorID *uint64, id uint64, req UpdateUserRequest) (*UserResponse, error) {
	var updated *identity.User
	_, err := s.recorder.Record(ctx, mutation(audit.ActionUpdate, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.UserRepo()
			user, err := repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := user.Snapshot()

			if err := checkUnique(ctx, repo, req.Name, req.Email, id); err != nil {
				return appaudit.Change{}, err
			}
			if err := user.Update(req.Name, req.Email, req.Password, req.PasswordConfirmation); err != nil {
				return appaudit.Change{}, err
			}
			if err := repo.Update(ctx, user); err != nil {
				return appaudit.Change{}, err
			}

			updated = user
			return appaudit.Change{EntityID: id, Before: before, After: user.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(*updated)
	return &response, nil
}

// Delete moves an active user to the trash
func (s *UserService) Delete(ctx context.Context, actorID *uint64, id uint64) (*UserResponse, error) {
	var trashed *identity.User
	_, err := s.recorder.Record(ctx, mutation(audit.ActionDelete, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.UserRepo()
			user, err := repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := user.Snapshot()

			if err := repo.SoftDelete(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			if trashed, err = repo.FindTrashedByIDForUpdate(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(*trashed)
	return &response, nil
}

// Restore brings a trashed user back
func (s *UserService) Restore(ctx context.Context, actorID *uint64, id uint64) (*UserResponse, error) {
	var restored *identity.User
	_, err := s.recorder.Record(ctx, mutation(audit.ActionRestore, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.UserRepo()
			user, err := repo.FindTrashedByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := user.Snapshot()

			if err := repo.Restore(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			if restored, err = repo.FindByID(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before, After: restored.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(*restored)
	return &response, nil
}

// ForceDelete permanently removes a user, trashed or not.
// Audit records that name the user as actor are kept.
func (s *UserService) ForceDelete(ctx context.Context, actorID *uint64, id uint64) error {
	_, err := s.recorder.Record(ctx, mutation(audit.ActionForceDelete, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.UserRepo()
			user, err := repo.FindAnyByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := user.Snapshot()

			if err := repo.ForceDelete(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before}, nil
		})
	return err
}

// GetByID retrieves an active user
func (s *UserService) GetByID(ctx context.Context, id uint64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(*user)
	return &response, nil
}

// List retrieves active users ordered by id
func (s *UserService) List(ctx context.Context, req ListUsersRequest) (shared.Paginated[UserResponse], error) {
	filter, err := shared.NewPageFilter(req.Page, req.PerPage, DefaultPerPage)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	filter.Search = req.Search

	result, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.MapPaginated(result, ToUserResponse), nil
}

// ListTrashed retrieves trashed users, most recently deleted first
func (s *UserService) ListTrashed(ctx context.Context, req ListUsersRequest) (shared.Paginated[UserResponse], error) {
	filter, err := shared.NewPageFilter(req.Page, req.PerPage, TrashedPerPage)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}

	result, err := s.userRepo.ListTrashed(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.MapPaginated(result, ToUserResponse), nil
}

// Graveyard lists trashed users together with the audit records of users
// that were permanently deleted.
func (s *UserService) Graveyard(ctx context.Context, req GraveyardRequest) (*GraveyardResponse, error) {
	trashed, err := s.ListTrashed(ctx, ListUsersRequest{Page: req.Page, PerPage: req.PerPage})
	if err != nil {
		return nil, err
	}
	deleted, err := s.audits.ForceDeleted(ctx, identity.TableName, req.AuditPage, req.AuditPerPage)
	if err != nil {
		return nil, err
	}
	return &GraveyardResponse{Trashed: trashed, Deleted: deleted}, nil
}

// checkUnique reports every taken field at once
func checkUnique(ctx context.Context, repo identity.UserRepository, name, email string, excludeID uint64) error {
	verr := &shared.ValidationError{}

	taken, err := repo.ExistsByName(ctx, strings.TrimSpace(name), excludeID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("name", "has already been taken")
	}

	taken, err = repo.ExistsByEmail(ctx, strings.TrimSpace(email), excludeID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("email", "has already been taken")
	}

	return verr.OrNil()
}

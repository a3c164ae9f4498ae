package auth

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"adboard/internal/domain"
	"adboard/internal/models"
	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
)

// roleBootstrapFile is the on-disk shape of the role seed file:
//
//	admins:
//	  - admin@example.com
//	moderators:
//	  - reviewer@example.com
type roleBootstrapFile struct {
	Admins     []string `yaml:"admins"`
	Moderators []string `yaml:"moderators"`
}

// ApplyRoleBootstrap promotes the users listed in the YAML seed file to
// ADMIN or MODERATOR. Run at startup; registration always creates plain
// users, so this file is how the first privileged accounts come to exist.
// Emails with no matching account are logged and skipped, never an error.
func ApplyRoleBootstrap(ctx context.Context, path string, repo domain.Repository, log *logging.Logger) error {
	const op = "auth.ApplyRoleBootstrap"

	data, err := os.ReadFile(path)
	if err != nil {
		return errs.NewStorage(op, "failed to read role bootstrap file", err)
	}
	var file roleBootstrapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errs.NewValidation(op, "malformed role bootstrap file", err)
	}

	var clog *logging.ComponentLogger
	if log != nil {
		clog = log.WithComponent("role_bootstrap")
	}

	for _, email := range file.Admins {
		if err := promote(ctx, repo, email, models.RoleAdmin, clog); err != nil {
			return err
		}
	}
	for _, email := range file.Moderators {
		if err := promote(ctx, repo, email, models.RoleModerator, clog); err != nil {
			return err
		}
	}
	return nil
}

func promote(ctx context.Context, repo domain.Repository, email string, role models.Role, log *logging.ComponentLogger) error {
	user, err := repo.GetUserByEmailCtx(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		if log != nil {
			log.Warn("bootstrap email has no registered account",
				logging.String("email", email),
				logging.String("role", string(role)))
		}
		return nil
	}
	if user.Role == role {
		return nil
	}

	user.Role = role
	user.Status = models.UserStatusActive
	if err := repo.UpdateUserCtx(ctx, user); err != nil {
		return err
	}
	if log != nil {
		log.Info("user promoted",
			logging.String("user_id", user.OID),
			logging.String("role", string(role)))
	}
	return nil
}

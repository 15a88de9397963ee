package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/spf13/pflag"
)

// principalFlags carries the caller identity given on the command line.
// Each flag falls back to a BUILDTRACK_* environment variable.
type principalFlags struct {
	userID   int64
	userName string
	role     string
}

func (p *principalFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&p.userID, "user-id", envInt64("BUILDTRACK_USER_ID"), "Acting user id (env BUILDTRACK_USER_ID)")
	fs.StringVar(&p.userName, "user-name", os.Getenv("BUILDTRACK_USER_NAME"), "Acting user name (env BUILDTRACK_USER_NAME)")
	fs.StringVar(&p.role, "role", os.Getenv("BUILDTRACK_ROLE"), "Acting role: admin, builder, manager, client (env BUILDTRACK_ROLE)")
}

// principal resolves the flags into a validated caller identity.
func (p *principalFlags) principal() (domain.Principal, error) {
	if p.userID <= 0 {
		return domain.Principal{}, fmt.Errorf("--user-id is required for this command")
	}
	if p.role == "" {
		return domain.Principal{}, fmt.Errorf("--role is required for this command")
	}
	role, err := domain.ParseRole(p.role)
	if err != nil {
		return domain.Principal{}, err
	}
	actor := domain.Principal{UserID: p.userID, UserName: p.userName, Role: role}
	return actor, actor.Validate()
}

func envInt64(key string) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

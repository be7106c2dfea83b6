package auth

import (
	"github.com/Chakyiu/chakyiu-blog/internal/data"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// Role names used in policies. Users are grouped into exactly one of the
// account roles; anonymous is the subject for requests without a session.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = string(data.RoleUser)
	RoleAdmin     = string(data.RoleAdmin)
)

// DefaultModel is the RBAC model used when no model file is configured.
const DefaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
`

// NewEnforcer creates a Casbin enforcer whose policies are stored in the
// application database. An empty modelPath selects DefaultModel.
func NewEnforcer(driverName, dsn, modelPath string) (*casbin.Enforcer, error) {
	opts := &sqlxadapter.AdapterOptions{
		DriverName:     driverName,
		DataSourceName: dsn,
		TableName:      "casbin_rule",
	}
	adapter := sqlxadapter.NewAdapterFromOptions(opts)

	var enforcer *casbin.Enforcer
	var err error
	if modelPath == "" {
		m, merr := model.NewModelFromString(DefaultModel)
		if merr != nil {
			return nil, merr
		}
		enforcer, err = casbin.NewEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewEnforcer(modelPath, adapter)
	}
	if err != nil {
		return nil, err
	}

	// keyMatch2 matches chi-style patterns such as /posts/:slug.
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewMemoryEnforcer creates an enforcer with DefaultModel and no persistence.
func NewMemoryEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(DefaultModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	e.AddFunction("keyMatch2", util.KeyMatch2Func)
	return e, nil
}

// RoleSync keeps the enforcer's user-to-role grouping in line with the role
// stored on each account.
type RoleSync struct {
	enforcer casbin.IEnforcer
}

// NewRoleSync creates a RoleSync for e.
func NewRoleSync(e casbin.IEnforcer) *RoleSync {
	return &RoleSync{enforcer: e}
}

// SyncRole replaces every role grouping of userID with role.
func (s *RoleSync) SyncRole(userID string, role data.Role) error {
	if _, err := s.enforcer.DeleteRolesForUser(userID); err != nil {
		return err
	}
	_, err := s.enforcer.AddRoleForUser(userID, string(role))
	return err
}

// RemoveUser drops every grouping for userID.
func (s *RoleSync) RemoveUser(userID string) error {
	_, err := s.enforcer.DeleteUser(userID)
	return err
}

package forward

import "strings"

// Authorizer 基于静态用户名列表的授权检查
type Authorizer struct {
	allowed map[string]struct{}
}

// NewAuthorizer 创建授权器，用户名不区分大小写，@ 前缀可选
func NewAuthorizer(usernames []string) *Authorizer {
	allowed := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		if key := normalizeUsername(name); key != "" {
			allowed[key] = struct{}{}
		}
	}
	return &Authorizer{allowed: allowed}
}

// IsAuthorized 纯查表，无副作用
func (a *Authorizer) IsAuthorized(s Submitter) bool {
	key := normalizeUsername(s.Username)
	if key == "" {
		return false
	}
	_, ok := a.allowed[key]
	return ok
}

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}

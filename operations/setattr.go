package operations

import (
	"fmt"

	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/rename"
	"github.com/rulego/batchops/utils/cast"
)

// setter returns the function SetAttr runs per entity. A pattern value is
// applied relative to the source pattern; entities whose current value does
// not match the source pattern are left unchanged.
func setter(req SetAttrRequest) (func(host.Entity) (bool, error), error) {
	if req.Name == "" {
		return nil, fmt.Errorf("set attribute: empty name")
	}
	dst, ok := req.Value.(string)
	if !ok || !rename.IsPattern(dst) {
		return func(e host.Entity) (bool, error) {
			return true, e.Set(req.Name, req.Value)
		}, nil
	}
	src := req.SourcePattern
	if src == "" {
		src = rename.Wildcard
	}
	p, err := rename.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(e host.Entity) (bool, error) {
		cur, ok := e.Get(req.Name)
		if !ok {
			return false, nil
		}
		s, err := cast.ToStringE(cur)
		if err != nil {
			return false, fmt.Errorf("rename %s: %w", req.Name, err)
		}
		next, matched := p.Apply(s, dst)
		if !matched || next == s {
			return false, nil
		}
		return true, e.Set(req.Name, next)
	}, nil
}

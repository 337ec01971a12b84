package router

import (
	"sort"

	"portfolio-api/internal/transport/http/ez"
)

// Module 在 /api 分组下挂载一组路由
type Module interface{ Mount(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type registry struct{ mods []Module }

func (r *registry) Register(mods ...Module) { r.mods = append(r.mods, mods...) }

// MountAll 按优先级挂载；同优先级保持注册顺序
func (r *registry) MountAll(api ez.EZ) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(api)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

package engine

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/dejo1307/pagerepl/internal/fiber"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/naming"
	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/snapshot"
)

const componentsDir = "components"

// emitted is one generated component location.
type emitted struct {
	np     naming.NamePath
	path   string // file path under src/
	module string // @/ import path
}

// components emits one file per code-bearing component in dependency order, so a
// file is only generated after every component it imports. Paths already in use
// by rewrite units get a numeric suffix.
func (e *Engine) components(ctx context.Context, meta *snapshot.FiberSnapshot, used map[string]bool) ([]replica.Component, []replica.File, error) {
	g, err := fiber.BuildGraph(meta)
	if err != nil {
		return nil, nil, err
	}

	var entries []naming.Entry
	for _, id := range meta.ComponentIDs() {
		if c := meta.Components[id]; c.CodeBearing() {
			entries = append(entries, naming.Entry{ID: string(id), Name: c.Name})
		}
	}
	names := naming.Assign(entries)

	locs := make(map[snapshot.ComponentID]emitted, len(entries))
	for _, en := range entries {
		locs[snapshot.ComponentID(en.ID)] = locate(names[en.ID], used)
	}

	var (
		mu    sync.Mutex
		comps []replica.Component
		files []replica.File
	)
	visit := func(ctx context.Context, grp fiber.Group) error {
		if !grp.Component.CodeBearing() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		loc := locs[grp.ID]

		var deps []emitted
		for _, d := range g.CodeBearingDirect(grp.ID) {
			deps = append(deps, locs[d])
		}
		src, stub, err := componentSource(loc, grp.Component.Code, deps)
		if err != nil {
			return err
		}

		comp := replica.Component{
			ID:   string(grp.ID),
			Name: loc.np.Name,
			Dir:  loc.np.Dir,
			Path: loc.path,
			Kind: string(grp.Component.Kind),
			Stub: stub,
		}
		for _, d := range deps {
			comp.Deps = append(comp.Deps, d.path)
		}

		mu.Lock()
		defer mu.Unlock()
		comps = append(comps, comp)
		files = append(files, newFile(loc.path, replica.KindComponent, loc.np.Name, src))
		return nil
	}

	if err := g.ProcessConcurrent(ctx, e.cfg.Concurrency, visit); err != nil {
		return nil, nil, err
	}
	return comps, files, nil
}

func locate(np naming.NamePath, used map[string]bool) emitted {
	dir := path.Join(componentsDir, np.Dir)
	name := np.Name
	for n := 2; used[filePath(dir, name)]; n++ {
		name = np.Name + strconv.Itoa(n)
	}
	used[filePath(dir, name)] = true
	np.Name = name
	return emitted{np: np, path: filePath(dir, name), module: "@/" + dir + "/" + name}
}

func filePath(dir, name string) string {
	return "src/" + dir + "/" + name + ".tsx"
}

// componentSource binds the captured code to the assigned name behind the
// imports of its direct dependencies. Without code the component is a
// pass-through stub.
func componentSource(loc emitted, code string, deps []emitted) (string, bool, error) {
	var sb strings.Builder
	locals := map[string]bool{loc.np.Name: true}
	for _, d := range deps {
		local := d.np.Name
		if locals[local] {
			local = naming.PascalCase(strings.ReplaceAll(d.np.Dir, "/", "-")) + local
		}
		for n := 2; locals[local]; n++ {
			local = d.np.Name + strconv.Itoa(n)
		}
		locals[local] = true
		sb.WriteString(jsx.Import{Module: d.module, Default: local}.Line() + "\n")
	}
	if len(deps) > 0 {
		sb.WriteString("\n")
	}

	code = strings.TrimSpace(code)
	stub := code == ""
	if stub {
		fmt.Fprintf(&sb, "export default function %s({ children }) {\n  return <>{children}</>;\n}\n", loc.np.Name)
	} else {
		code = strings.TrimSuffix(code, ";")
		fmt.Fprintf(&sb, "const %s = %s;\n\nexport default %s;\n", loc.np.Name, code, loc.np.Name)
	}

	src := sb.String()
	if err := jsx.Check(loc.path, src); err != nil {
		return "", false, err
	}
	return src, stub, nil
}

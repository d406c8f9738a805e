package fluent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

type taskNode struct {
	key       string
	run       Task
	dependsOn []string
}

// TaskGroup runs tasks in dependency order. Tasks whose dependencies are all done run
// concurrently; the first failure stops the group and is returned as is.
type TaskGroup struct {
	mu    sync.Mutex
	tasks map[string]*taskNode
	order []string
}

func NewTaskGroup() *TaskGroup {
	return &TaskGroup{tasks: make(map[string]*taskNode)}
}

// Add registers a task. Adding a key twice keeps the first task, so a shared creatable such as a
// new resource group is created once. Empty dependency keys are ignored.
func (g *TaskGroup) Add(key string, run Task, dependsOn ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, found := g.tasks[key]; found {
		return
	}
	deps := make([]string, 0, len(dependsOn))
	for _, dep := range dependsOn {
		if dep != "" && dep != key {
			deps = append(deps, dep)
		}
	}
	g.tasks[key] = &taskNode{key: key, run: run, dependsOn: deps}
	g.order = append(g.order, key)
}

func (g *TaskGroup) Has(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, found := g.tasks[key]
	return found
}

func (g *TaskGroup) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

func (g *TaskGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

func (g *TaskGroup) Run(ctx context.Context) error {
	levels, err := g.levels()
	if err != nil {
		return err
	}
	for _, level := range levels {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, node := range level {
			group.Go(func() error {
				slog.Debug("Running task", "key", node.key)
				return node.run(groupCtx)
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Levels returns the task keys grouped into batches that can run concurrently, in run order.
func (g *TaskGroup) Levels() ([][]string, error) {
	levels, err := g.levels()
	if err != nil {
		return nil, err
	}
	keys := make([][]string, 0, len(levels))
	for _, level := range levels {
		batch := make([]string, 0, len(level))
		for _, node := range level {
			batch = append(batch, node.key)
		}
		keys = append(keys, batch)
	}
	return keys, nil
}

func (g *TaskGroup) levels() ([][]*taskNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	remaining := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string)
	for _, key := range g.order {
		node := g.tasks[key]
		for _, dep := range node.dependsOn {
			if _, found := g.tasks[dep]; !found {
				return nil, fmt.Errorf("task %s depends on unknown task %s", key, dep)
			}
			dependents[dep] = append(dependents[dep], key)
		}
		remaining[key] = len(node.dependsOn)
	}
	var levels [][]*taskNode
	done := 0
	for done < len(g.order) {
		var level []*taskNode
		for _, key := range g.order {
			if count, found := remaining[key]; found && count == 0 {
				level = append(level, g.tasks[key])
			}
		}
		if len(level) == 0 {
			var cyclic []string
			for _, key := range g.order {
				if _, found := remaining[key]; found {
					cyclic = append(cyclic, key)
				}
			}
			return nil, fmt.Errorf("task dependency cycle between %s", strings.Join(cyclic, ", "))
		}
		for _, node := range level {
			delete(remaining, node.key)
			for _, dependent := range dependents[node.key] {
				remaining[dependent]--
			}
		}
		done += len(level)
		levels = append(levels, level)
	}
	return levels, nil
}

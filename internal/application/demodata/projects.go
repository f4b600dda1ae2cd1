package demodata

import (
	"context"
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

const (
	minProjectStages = 4
	maxProjectStages = 6
)

// projects crea proyectos con 4 a 6 etapas y tareas repartidas al azar entre ellas.
// Las etapas con el mismo nombre se comparten entre proyectos.
func (r *run) projects(ctx context.Context) error {
	cfg := r.in.Selections.Project
	known := map[string]int{}
	existing, err := r.gw.SearchRead(ctx, "project.task.type", nil, []string{"name"}, 0)
	if err != nil {
		if err := r.soft(err, "etapas de proyecto no disponibles"); err != nil {
			return err
		}
	}
	for _, s := range existing {
		known[enrichment.Fold(s.Str("name"))] = s.ID()
	}

	taskIdx := 0
	for i := 0; i < cfg.Projects; i++ {
		name := r.in.Names.Name(entity.NamesProjects, i, fmt.Sprintf("%s Projekt %d", r.in.Industry, i+1))
		vals := entity.Values{"name": name}
		if len(r.partners) > 0 {
			vals["partner_id"] = pick(r, r.partners)
		}
		pid, ok, err := r.create(ctx, "project.project", vals, "proyecto")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		r.projectIDs = append(r.projectIDs, pid)

		stages, err := r.projectStages(ctx, pid, name, known)
		if err != nil {
			return err
		}
		for t := 0; t < cfg.TasksPerProject; t++ {
			tname := r.in.Names.Name(entity.NamesTasks, taskIdx, taskName(t))
			taskIdx++
			tvals := entity.Values{"name": tname, "project_id": pid}
			if len(stages) > 0 {
				tvals["stage_id"] = pick(r, stages)
			}
			id, ok, err := r.create(ctx, "project.task", tvals, "tarea")
			if err != nil {
				return err
			}
			if ok {
				r.tasks = append(r.tasks, taskRef{id: id, project: pid, name: tname})
			}
		}
	}
	return nil
}

// stageNames sugerencia del generador si trae al menos 4 nombres distintos, si no plantilla del sector.
func (r *run) stageNames(ctx context.Context, project string) []string {
	suggested, err := r.gen.FetchProjectStageNames(ctx, r.in.Industry, project, r.in.Language)
	if err != nil {
		r.log.Debug().Err(err).Str("project", project).Msg("etapas sugeridas no disponibles")
	}
	seen := enrichment.NewNameSet()
	var names []string
	for _, n := range cleanList(suggested) {
		if !seen.Contains(n) {
			seen.Add(n)
			names = append(names, n)
		}
	}
	if len(names) >= minProjectStages {
		return names[:min(len(names), maxProjectStages)]
	}
	tpl := industryStages(r.in.Industry)
	return tpl[:min(len(tpl), r.between(minProjectStages, maxProjectStages))]
}

// projectStages vincula o crea las etapas del proyecto y devuelve sus ids.
func (r *run) projectStages(ctx context.Context, projectID int, project string, known map[string]int) ([]int, error) {
	var ids []int
	for seq, name := range r.stageNames(ctx, project) {
		link := []any{[]any{4, projectID}}
		key := enrichment.Fold(name)
		if id, ok := known[key]; ok {
			if _, err := r.gw.Write(ctx, "project.task.type", []int{id}, entity.Values{"project_ids": link}); err != nil {
				if err := r.soft(err, "etapa no vinculada"); err != nil {
					return ids, err
				}
				continue
			}
			ids = append(ids, id)
			continue
		}
		id, ok, err := r.create(ctx, "project.task.type", entity.Values{
			"name":        name,
			"sequence":    seq + 1,
			"project_ids": link,
		}, "etapa de proyecto")
		if err != nil {
			return ids, err
		}
		if ok {
			known[key] = id
			ids = append(ids, id)
		}
	}
	return ids, nil
}

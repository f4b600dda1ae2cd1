package demodata

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// minSkillLevels niveles mínimos por tipo de habilidad.
const minSkillLevels = 3

// skillType tipo de habilidad con sus ids ya creados. levels va ordenado por progreso.
type skillType struct {
	id     int
	skills []int
	levels []skillLevel
}

type skillLevel struct {
	id       int
	progress float64
}

// skillRef habilidad concreta con su nivel, lista para un comando (0,0,vals).
type skillRef struct {
	typeID, skillID, levelID int
}

func (s skillRef) values() entity.Values {
	return entity.Values{"skill_type_id": s.typeID, "skill_id": s.skillID, "skill_level_id": s.levelID}
}

// recruitment crea taxonomía de habilidades, departamentos, puestos y candidatos.
func (r *run) recruitment(ctx context.Context) error {
	cfg := r.in.Selections.Recruitment
	data, err := r.gen.FetchRecruitingData(ctx, r.in.Industry, cfg.Jobs, cfg.Candidates, r.in.Language)
	if err != nil {
		r.log.Warn().Err(err).Msg("datos de reclutamiento no disponibles, se usan plantillas")
	}
	if data == nil {
		data = &entity.RecruitingData{}
	}

	types, err := r.ensureSkillTypes(ctx, data.SkillTypes)
	if err != nil {
		return err
	}
	if err := r.ensureDepartments(ctx); err != nil {
		return err
	}
	if len(r.departments) == 0 {
		r.report.Skip(entity.ModuleRecruitment, "sin departamentos")
		return nil
	}
	jobs, err := r.createJobs(ctx, data.Jobs, cfg.Jobs, types)
	if err != nil {
		return err
	}
	return r.createApplicants(ctx, data.Candidates, cfg.Candidates, jobs, types)
}

// ensureSkillTypes reutiliza tipos existentes con el mismo nombre o los crea con
// sus habilidades y al menos tres niveles.
func (r *run) ensureSkillTypes(ctx context.Context, suggested []entity.SkillTypeSuggestion) ([]skillType, error) {
	var valid []entity.SkillTypeSuggestion
	for _, s := range suggested {
		if strings.TrimSpace(s.Name) != "" && len(cleanList(s.Skills)) > 0 {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		valid = fallbackSkillTypes
	}

	existing, err := r.gw.SearchRead(ctx, "hr.skill.type", nil, []string{"name"}, 0)
	if err != nil {
		if err := r.soft(err, "tipos de habilidad no disponibles"); err != nil {
			return nil, err
		}
	}

	var out []skillType
	seen := enrichment.NewNameSet()
	for _, s := range valid {
		if seen.Contains(s.Name) {
			continue
		}
		seen.Add(s.Name)

		id := 0
		for _, e := range existing {
			if enrichment.FoldEqual(e.Str("name"), s.Name) {
				id = e.ID()
				break
			}
		}
		if id == 0 {
			var ok bool
			id, ok, err = r.create(ctx, "hr.skill.type", skillTypeValues(s), "tipo de habilidad")
			if err != nil {
				return out, err
			}
			if !ok {
				continue
			}
		} else {
			r.log.Debug().Str("skill_type", s.Name).Msg("tipo de habilidad reutilizado")
		}

		st, err := r.loadSkillType(ctx, id)
		if err == nil && len(st.levels) < minSkillLevels {
			st, err = r.topUpLevels(ctx, st)
		}
		if err != nil {
			if err := r.soft(err, "tipo de habilidad sin detalle"); err != nil {
				return out, err
			}
			continue
		}
		if len(st.skills) > 0 && len(st.levels) > 0 {
			out = append(out, st)
		}
	}
	return out, nil
}

func skillTypeValues(s entity.SkillTypeSuggestion) entity.Values {
	var skills, levels []any
	for _, name := range cleanList(s.Skills) {
		skills = append(skills, []any{0, 0, entity.Values{"name": name}})
	}
	suggested := make([]entity.LevelSuggestion, 0, len(s.Levels))
	for _, l := range s.Levels {
		if l.Name = strings.TrimSpace(l.Name); l.Name != "" {
			suggested = append(suggested, l)
		}
	}
	if len(suggested) < minSkillLevels {
		suggested = fallbackLevels
	}
	for _, l := range suggested {
		levels = append(levels, []any{0, 0, entity.Values{
			"name":           l.Name,
			"level_progress": max(0, min(l.Progress, 100)),
		}})
	}
	return entity.Values{
		"name":            strings.TrimSpace(s.Name),
		"skill_ids":       skills,
		"skill_level_ids": levels,
	}
}

// topUpLevels completa con la escala fija un tipo existente que tiene menos de tres niveles.
func (r *run) topUpLevels(ctx context.Context, st skillType) (skillType, error) {
	recs, err := r.gw.SearchRead(ctx, "hr.skill.level", ports.Where("skill_type_id", "=", st.id), []string{"name"}, 0)
	if err != nil {
		return st, err
	}
	names := enrichment.NewNameSet()
	for _, l := range recs {
		names.Add(l.Str("name"))
	}
	have := len(recs)
	for _, l := range fallbackLevels {
		if have >= minSkillLevels {
			break
		}
		if names.Contains(l.Name) {
			continue
		}
		_, ok, err := r.create(ctx, "hr.skill.level", entity.Values{
			"name":           l.Name,
			"level_progress": l.Progress,
			"skill_type_id":  st.id,
		}, "nivel de habilidad")
		if err != nil {
			return st, err
		}
		if ok {
			have++
		}
	}
	return r.loadSkillType(ctx, st.id)
}

func (r *run) loadSkillType(ctx context.Context, id int) (skillType, error) {
	st := skillType{id: id}
	skills, err := r.gw.SearchRead(ctx, "hr.skill", ports.Where("skill_type_id", "=", id), []string{"name"}, 0)
	if err != nil {
		return st, err
	}
	st.skills = ports.RecordIDs(skills)
	levels, err := r.gw.SearchRead(ctx, "hr.skill.level", ports.Where("skill_type_id", "=", id), []string{"level_progress"}, 0)
	if err != nil {
		return st, err
	}
	for _, l := range levels {
		st.levels = append(st.levels, skillLevel{id: l.ID(), progress: l.Float("level_progress")})
	}
	slices.SortStableFunc(st.levels, func(a, b skillLevel) int {
		switch {
		case a.progress < b.progress:
			return -1
		case a.progress > b.progress:
			return 1
		}
		return 0
	})
	return st, nil
}

// pickSkills hasta n habilidades distintas. Con highBias el nivel cae en la mitad alta
// de la escala el 70% de las veces.
func (r *run) pickSkills(types []skillType, n int, highBias bool) []skillRef {
	var all []skillRef
	for _, t := range types {
		for _, s := range t.skills {
			all = append(all, skillRef{typeID: t.id, skillID: s})
		}
	}
	chosen := sample(r, all, n)
	for i := range chosen {
		t := types[slices.IndexFunc(types, func(t skillType) bool { return t.id == chosen[i].typeID })]
		levels := t.levels
		if highBias && len(levels) > 1 {
			if r.rng.Float64() < 0.7 {
				levels = levels[len(levels)/2:]
			} else {
				levels = levels[:len(levels)/2]
			}
		}
		chosen[i].levelID = pick(r, levels).id
	}
	return chosen
}

func skillCommands(refs []skillRef) []any {
	out := make([]any, 0, len(refs))
	for _, s := range refs {
		out = append(out, []any{0, 0, s.values()})
	}
	return out
}

// createJobs reparte los puestos entre departamentos. Los nombres son únicos por
// departamento sin distinguir mayúsculas, incluyendo los puestos previos.
func (r *run) createJobs(ctx context.Context, suggested []string, n int, types []skillType) ([]jobRef, error) {
	existing, err := r.gw.SearchRead(ctx, "hr.job", nil, []string{"name", "department_id"}, 0)
	if err != nil {
		if err := r.soft(err, "puestos existentes no disponibles"); err != nil {
			return nil, err
		}
	}
	names := map[int]enrichment.NameSet{}
	for _, j := range existing {
		dept, _ := j.Ref("department_id")
		if names[dept] == nil {
			names[dept] = enrichment.NewNameSet()
		}
		names[dept].Add(j.Str("name"))
	}

	suggested = cleanList(suggested)
	var jobs []jobRef
	for i := 0; i < n; i++ {
		dept := r.departments[i%len(r.departments)]
		if names[dept] == nil {
			names[dept] = enrichment.NewNameSet()
		}
		raw := jobTitles[i%len(jobTitles)]
		if i < len(suggested) {
			raw = suggested[i]
		}
		name := names[dept].Unique(raw)

		vals := entity.Values{
			"name":              name,
			"department_id":     dept,
			"no_of_recruitment": r.between(1, 3),
		}
		if summary, err := r.gen.FetchJobSummary(ctx, r.in.Industry, name, r.in.Language); err != nil {
			r.log.Debug().Err(err).Str("job", name).Msg("descripción de puesto no disponible")
		} else if summary != "" {
			vals["description"] = summary
		}
		if len(types) > 0 {
			vals["job_skill_ids"] = skillCommands(r.pickSkills(types, r.between(2, 4), false))
		}

		id, ok, err := r.create(ctx, "hr.job", vals, "puesto")
		if err != nil {
			return jobs, err
		}
		if ok {
			jobs = append(jobs, jobRef{id: id, department: dept})
		}
	}
	return jobs, nil
}

type jobRef struct {
	id, department int
}

// createApplicants reparte los candidatos de forma pareja; el resto va a los primeros puestos.
func (r *run) createApplicants(ctx context.Context, suggested []string, n int, jobs []jobRef, types []skillType) error {
	if len(jobs) == 0 || n <= 0 {
		return nil
	}
	stages, err := r.gw.SearchRead(ctx, "hr.recruitment.stage", nil, []string{"name"}, 0)
	if err != nil {
		if err := r.soft(err, "etapas de reclutamiento no disponibles"); err != nil {
			return err
		}
	}
	stageIDs := ports.RecordIDs(stages)

	suggested = cleanList(suggested)
	next := 0
	for j, job := range jobs {
		count := n / len(jobs)
		if j < n%len(jobs) {
			count++
		}
		for c := 0; c < count; c++ {
			name := personName(next + 3)
			if next < len(suggested) {
				name = suggested[next]
			}
			next++

			vals := entity.Values{
				"partner_name":  name,
				"email_from":    emailOf(name),
				"job_id":        job.id,
				"department_id": job.department,
			}
			if len(stageIDs) > 0 {
				vals["stage_id"] = pick(r, stageIDs)
			}
			if len(types) > 0 {
				vals["applicant_skill_ids"] = skillCommands(r.pickSkills(types, r.between(1, 3), true))
			}
			id, ok, err := r.create(ctx, "hr.applicant", vals, "candidato")
			if err != nil {
				return err
			}
			if ok {
				r.applicants = append(r.applicants, id)
			}
		}
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// emailOf dirección de ejemplo a partir del nombre.
func emailOf(name string) string {
	local := strings.Join(strings.Fields(enrichment.Fold(name)), ".")
	return fmt.Sprintf("%s@example.com", local)
}

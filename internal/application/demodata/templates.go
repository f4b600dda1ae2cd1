package demodata

import (
	"fmt"
	"strings"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

var opportunityTitles = []string{
	"Rahmenvertrag", "Erweiterung", "Wartungsvertrag", "Neuanschaffung",
	"Pilotprojekt", "Jahresbedarf", "Modernisierung", "Folgeauftrag",
}

// stageTemplates etapas de proyecto por palabra clave del sector.
var stageTemplates = []struct {
	keywords []string
	stages   []string
}{
	{[]string{"bau", "handwerk", "construction"}, []string{"Aufmaß", "Angebot", "Materialbestellung", "Ausführung", "Abnahme", "Abrechnung"}},
	{[]string{"software", "it", "tech", "digital"}, []string{"Backlog", "Analyse", "Entwicklung", "Code Review", "Test", "Release"}},
	{[]string{"beratung", "consulting", "agentur"}, []string{"Anfrage", "Workshop", "Konzept", "Umsetzung", "Review", "Abschluss"}},
	{[]string{"produktion", "fertigung", "maschinenbau", "industrie"}, []string{"Planung", "Konstruktion", "Fertigung", "Montage", "Qualitätsprüfung", "Auslieferung"}},
}

var defaultStages = []string{"Neu", "Geplant", "In Bearbeitung", "Prüfung", "Erledigt", "Archiviert"}

// industryStages plantilla de etapas según el sector.
func industryStages(industry string) []string {
	folded := enrichment.Fold(industry)
	words := strings.FieldsFunc(folded, func(r rune) bool { return r == ' ' || r == '-' || r == '/' || r == ',' })
	for _, tpl := range stageTemplates {
		for _, kw := range tpl.keywords {
			for _, w := range words {
				if strings.HasPrefix(w, kw) || (len(kw) > 3 && strings.Contains(w, kw)) {
					return tpl.stages
				}
			}
		}
	}
	return defaultStages
}

// fallbackLevels escala usada cuando el generador sugiere menos de tres niveles.
var fallbackLevels = []entity.LevelSuggestion{
	{Name: "Anfänger", Progress: 25},
	{Name: "Fortgeschritten", Progress: 60},
	{Name: "Experte", Progress: 100},
}

var fallbackSkillTypes = []entity.SkillTypeSuggestion{
	{Name: "Fachkenntnisse", Skills: []string{"Projektmanagement", "Qualitätssicherung", "Kundenberatung", "Dokumentation"}},
	{Name: "Sprachen", Skills: []string{"Deutsch", "Englisch", "Französisch"}},
}

var fallbackDepartments = []string{"Verwaltung", "Vertrieb", "Produktion"}

var firstNames = []string{"Anna", "Lukas", "Marie", "Jonas", "Sophie", "Felix", "Laura", "Paul", "Lea", "Maximilian", "Hannah", "Tim"}
var lastNames = []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Hoffmann", "Koch"}

// personName nombre de persona determinista a partir de un índice.
func personName(i int) string {
	return fmt.Sprintf("%s %s", firstNames[i%len(firstNames)], lastNames[(i/len(firstNames)+i)%len(lastNames)])
}

var jobTitles = []string{"Sachbearbeiter", "Projektleiter", "Fachkraft", "Teamleiter", "Techniker", "Assistent"}

// activitySummaries resúmenes por modelo destino.
var activitySummaries = map[string][]string{
	"crm.lead":     {"Angebot nachfassen", "Bedarf klären", "Preisverhandlung", "Entscheider anrufen"},
	"hr.applicant": {"Vorstellungsgespräch planen", "Referenzen prüfen", "Vertragsangebot senden", "Rückmeldung geben"},
	"project.task": {"Status prüfen", "Abstimmung mit Kunde", "Unterlagen anfordern", "Zwischenergebnis vorstellen"},
	"res.partner":  {"Kontaktdaten aktualisieren", "Jahresgespräch", "Newsletter-Einwilligung klären", "Besuch vereinbaren"},
}

var taskTemplates = []string{
	"Anforderungen aufnehmen", "Angebot abstimmen", "Entwurf erstellen", "Material bestellen",
	"Umsetzung", "Qualitätsprüfung", "Dokumentation", "Übergabe an Kunden",
}

// taskName nombre de tarea de plantilla; a partir de la segunda vuelta lleva número.
func taskName(i int) string {
	name := taskTemplates[i%len(taskTemplates)]
	if round := i / len(taskTemplates); round > 0 {
		return fmt.Sprintf("%s %d", name, round+1)
	}
	return name
}

var timesheetNotes = []string{
	"Abstimmung", "Analyse", "Umsetzung", "Recherche", "Kundentermin", "Nacharbeit", "Dokumentation",
}

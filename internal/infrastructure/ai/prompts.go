package ai

import (
	"fmt"
	"strings"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// systemPrompt rol común de todas las consultas.
const systemPrompt = `Du bist ein Generator für fiktive, aber realistische Demodaten eines Odoo-ERP-Systems.
Antworte AUSSCHLIESSLICH mit einem gültigen JSON-Objekt, ohne Markdown und ohne erklärenden Text.
Verwende niemals Steuernummern oder USt-IdNr.`

func languageLine(language string) string {
	if language == "" {
		return ""
	}
	return fmt.Sprintf("\nAlle Namen und Texte müssen auf %s sein.", language)
}

func creativePrompt(c entity.Criteria, language string) string {
	return fmt.Sprintf(`Erstelle Demodaten basierend auf diesen Kriterien:
- Branche: %s
- Anzahl der Firmen: %d
- Pro Firma: %d Lieferadressen, %d Rechnungsadressen, %d sonstige Kontakte
- Außerdem %d Dienstleistungen, %d Verbrauchsprodukte und %d lagerfähige Produkte.

Struktur: {"companies": [...], "products": {"services": [...], "consumables": [...], "storables": [...]}}
Jedes Firmen-Objekt:
{"company_data": {"name": "...", "email": "...", "phone": "...", "street": "...", "city": "...", "zip": "...", "country_code": "DE"},
 "contacts": [{"name": "...", "type": "delivery|invoice|other", "email": "...", "street": "...", "city": "...", "zip": "..."}]}
Jedes Produkt-Objekt enthält "name", "list_price" und optional "description_sale".%s`,
		c.Industry, c.NumCompanies,
		c.NumDeliveryContacts, c.NumInvoiceContacts, c.NumOtherContacts,
		c.NumServices, c.NumConsumables, c.NumStorables,
		languageLine(language))
}

func namesPrompt(c entity.Criteria, language string) string {
	return fmt.Sprintf(`Schlage für ein Unternehmen der Branche "%s" Namen vor.
Struktur: {"employees": [10 Vor- und Nachnamen], "projects": [8 Projektnamen], "opportunities": [10 Verkaufschancen],
"tasks": [15 Aufgabentitel], "manufactured": [6 herstellbare Endprodukte], "departments": [4 Abteilungen]}%s`,
		c.Industry, languageLine(language))
}

func uomPrompt(productName string, options []ports.UOMOption, language string) string {
	var sb strings.Builder
	for _, o := range options {
		fmt.Fprintf(&sb, "- %d: %s\n", o.ID, o.Name)
	}
	return fmt.Sprintf(`Wähle die passendste Maßeinheit für das Produkt "%s" aus dieser Liste:
%s
Struktur: {"uom_id": <id aus der Liste>}%s`, productName, sb.String(), languageLine(language))
}

func bomPrompt(industry, productName string, count int, language string) string {
	return fmt.Sprintf(`Branche: %s. Nenne genau %d unterschiedliche Baugruppen oder Komponenten, aus denen das Produkt "%s" gefertigt wird.
Struktur: {"components": ["...", ...]}%s`, industry, count, productName, languageLine(language))
}

func stagesPrompt(industry, projectName, language string) string {
	return fmt.Sprintf(`Branche: %s. Nenne 4 bis 6 aufeinanderfolgende Phasen für das Projekt "%s" in einem Kanban-Board.
Struktur: {"stages": ["...", ...]}%s`, industry, projectName, languageLine(language))
}

func recruitingPrompt(industry string, jobs, candidates int, language string) string {
	return fmt.Sprintf(`Branche: %s. Erstelle Daten für die Personalgewinnung:
- %d Stellenbezeichnungen
- %d Bewerbernamen (Vor- und Nachname)
- 2 bis 3 Fähigkeitstypen mit je 3 bis 5 Fähigkeiten und 3 Stufen mit Fortschritt 0-100
Struktur: {"jobs": [...], "candidates": [...], "skill_types": [{"name": "...", "skills": [...], "levels": [{"name": "...", "level_progress": 50}]}]}%s`,
		industry, jobs, candidates, languageLine(language))
}

func jobSummaryPrompt(industry, jobName, language string) string {
	return fmt.Sprintf(`Branche: %s. Schreibe eine kurze Stellenbeschreibung (2 bis 3 Sätze) für die Stelle "%s".
Struktur: {"summary": "..."}%s`, industry, jobName, languageLine(language))
}

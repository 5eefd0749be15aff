package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/harrylevesque/rentnest/internal/models"
)

// Printer writes styled listings, leads and messages to w.
type Printer struct {
	w     io.Writer
	theme Theme
	now   func() time.Time
}

func NewPrinter(w io.Writer, theme Theme) *Printer {
	return &Printer{w: w, theme: theme, now: time.Now}
}

func (p *Printer) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func (p *Printer) faint(s string) string { return p.style(p.theme.FaintText).Render(s) }

// Rent formats a monthly rent with digit grouping.
func Rent(amount int64) string {
	return "₹" + humanize.Comma(amount)
}

// Summary is the one-line description of a listing: "2 BHK apartment · Locality, City".
func Summary(prop *models.Property) string {
	kind := string(prop.Type)
	if prop.BHK > 0 && prop.Type != models.TypeStudio {
		kind = fmt.Sprintf("%d BHK %s", prop.BHK, prop.Type)
	}
	place := prop.City
	if prop.Locality != "" {
		place = prop.Locality + ", " + prop.City
	}
	return kind + " · " + place
}

func (p *Printer) Message(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(p.theme.Accent).Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, p.style(p.theme.Error).Bold(true).Render("Error: ")+err.Error())
}

func (p *Printer) PropertyLine(prop *models.Property) {
	status := p.style(p.theme.PropertyStatusColor(prop.Status)).Render(fmt.Sprintf("%-8s", prop.Status))
	title := lipgloss.NewStyle().Bold(true).Foreground(p.theme.NormalText).Render(prop.Title)
	rent := p.style(p.theme.Price).Render(Rent(prop.Rent) + "/mo")
	fmt.Fprintf(p.w, "%s %s  %s  %s  %s\n", status, title, rent, Summary(prop), p.faint(prop.ID))
}

func (p *Printer) Properties(props []models.Property) {
	if len(props) == 0 {
		fmt.Fprintln(p.w, p.faint("No listings."))
		return
	}
	for i := range props {
		p.PropertyLine(&props[i])
	}
}

func (p *Printer) PropertyPage(page *models.Page[models.Property]) {
	p.Properties(page.Items)
	if page.Total == 0 {
		return
	}
	footer := fmt.Sprintf("page %d, %d of %d", page.Page, len(page.Items), page.Total)
	if page.HasMore() {
		footer += fmt.Sprintf(" (next: --page %d)", page.Page+1)
	}
	fmt.Fprintln(p.w, p.faint(footer))
}

// PropertyDetail prints every field of a listing inside a rounded border.
func (p *Printer) PropertyDetail(prop *models.Property) {
	var b strings.Builder
	label := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", p.faint(fmt.Sprintf("%-12s", k)), v)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(p.theme.Accent).Render(prop.Title) + "\n")
	b.WriteString(Summary(prop) + "\n\n")
	label("Rent", p.style(p.theme.Price).Render(Rent(prop.Rent)+"/mo"))
	if prop.Deposit > 0 {
		label("Deposit", Rent(prop.Deposit))
	}
	if prop.AreaSqft > 0 {
		label("Area", humanize.Comma(int64(prop.AreaSqft))+" sqft")
	}
	label("Furnishing", string(prop.Furnishing))
	label("Tenants", string(prop.TenantPreference))
	label("Address", prop.Address)
	label("Amenities", strings.Join(prop.Amenities, ", "))
	if !prop.AvailableFrom.IsZero() {
		label("Available", prop.AvailableFrom.Format("2 Jan 2006"))
	}
	label("Status", p.style(p.theme.PropertyStatusColor(prop.Status)).Render(string(prop.Status)))
	label("Views", humanize.Comma(prop.Views))
	if n := len(prop.Images); n > 0 {
		label("Images", fmt.Sprintf("%d", n))
	}
	label("Posted", humanize.RelTime(prop.CreatedAt, p.now(), "ago", "from now"))
	label("ID", prop.ID)
	if prop.Description != "" {
		b.WriteString("\n" + prop.Description + "\n")
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.Border).
		Padding(0, 1)
	fmt.Fprintln(p.w, box.Render(strings.TrimRight(b.String(), "\n")))
}

func (p *Printer) Leads(leads []models.Lead) {
	if len(leads) == 0 {
		fmt.Fprintln(p.w, p.faint("No leads."))
		return
	}
	for _, l := range leads {
		status := p.style(p.theme.LeadStatusColor(l.Status)).Render(fmt.Sprintf("%-9s", l.Status))
		when := humanize.RelTime(l.CreatedAt, p.now(), "ago", "from now")
		who := l.Name
		if l.Phone != "" {
			who += " (" + l.Phone + ")"
		}
		fmt.Fprintf(p.w, "%s %s  %s  %s\n", status, who, p.faint(when), p.faint(l.ID))
		if l.Message != "" {
			fmt.Fprintf(p.w, "          %s\n", l.Message)
		}
	}
}

func (p *Printer) Dashboard(d *models.Dashboard) {
	header := lipgloss.NewStyle().Bold(true).Foreground(p.theme.Accent)
	fmt.Fprintln(p.w, header.Render("Listings"))
	for _, s := range models.PropertyStatuses {
		fmt.Fprintf(p.w, "  %s %d\n", p.style(p.theme.PropertyStatusColor(s)).Render(fmt.Sprintf("%-10s", s)), d.Listings[s])
	}
	fmt.Fprintln(p.w, header.Render("Leads"))
	for _, s := range models.LeadStatuses {
		fmt.Fprintf(p.w, "  %s %d\n", p.style(p.theme.LeadStatusColor(s)).Render(fmt.Sprintf("%-10s", s)), d.Leads[s])
	}
	fmt.Fprintf(p.w, "%s %s\n", header.Render("Views"), humanize.Comma(d.Views))
}

// DescribeFilter renders the non-empty parts of a saved search.
func DescribeFilter(f models.Filter) string {
	var parts []string
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Query))
	}
	if f.Locality != "" {
		parts = append(parts, "in "+f.Locality)
	}
	if f.City != "" {
		parts = append(parts, "city "+f.City)
	}
	switch {
	case f.MinRent > 0 && f.MaxRent > 0:
		parts = append(parts, Rent(f.MinRent)+"-"+Rent(f.MaxRent))
	case f.MinRent > 0:
		parts = append(parts, "from "+Rent(f.MinRent))
	case f.MaxRent > 0:
		parts = append(parts, "up to "+Rent(f.MaxRent))
	}
	for _, b := range f.BHK {
		parts = append(parts, fmt.Sprintf("%d BHK", b))
	}
	for _, t := range f.Types {
		parts = append(parts, string(t))
	}
	for _, fu := range f.Furnishing {
		parts = append(parts, string(fu))
	}
	if f.TenantPreference != "" {
		parts = append(parts, "for "+string(f.TenantPreference))
	}
	if len(f.Amenities) > 0 {
		parts = append(parts, "with "+strings.Join(f.Amenities, ", "))
	}
	if len(parts) == 0 {
		return "everything"
	}
	return strings.Join(parts, " · ")
}

func (p *Printer) Searches(entries []models.SearchEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.faint("No recent searches."))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, "%s  %s\n", DescribeFilter(e.Filter), p.faint(humanize.RelTime(e.CreatedAt, p.now(), "ago", "from now")))
	}
}

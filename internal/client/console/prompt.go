package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/PlantCare/internal/models"
)

// Prompter reads answers line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter reads from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line reads the next raw line. ok is false at end of input.
func (p *Prompter) Line() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	return p.scanner.Text(), true
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	line, _ := p.Line()
	return strings.TrimSpace(line)
}

// AskOptional returns nil for a blank answer.
func (p *Prompter) AskOptional(label string) *string {
	v := p.Ask(label + " (optional)")
	if v == "" {
		return nil
	}
	return &v
}

// Confirm accepts "y" or "yes".
func (p *Prompter) Confirm(label string) bool {
	switch strings.ToLower(p.Ask(label + " [y/N]")) {
	case "y", "yes":
		return true
	}
	return false
}

// AskFloat returns nil for a blank answer.
func (p *Prompter) AskFloat(label string) (*float64, error) {
	v := p.Ask(label + " (optional)")
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", v)
	}
	return &f, nil
}

// PlantInput asks for a new plant. Blank enum answers use the category
// template on the server.
func (p *Prompter) PlantInput() models.PlantInput {
	return models.PlantInput{
		Name:               p.Ask("Name"),
		Category:           models.Category(p.Ask(choices("Category", categories))),
		CareLevel:          p.AskOptional("Care level"),
		WateringSchedule:   models.WateringSchedule(p.Ask(choices("Watering schedule (blank for default)", wateringSchedules))),
		SunlightPreference: models.SunlightPreference(p.Ask(choices("Sunlight preference (blank for default)", sunlightPreferences))),
		Location:           p.AskOptional("Location"),
		PotSize:            models.PotSize(p.Ask(choices("Pot size", potSizes))),
	}
}

// PlantPatch asks for plant changes. Blank answers leave fields unchanged.
func (p *Prompter) PlantPatch() models.PlantPatch {
	var patch models.PlantPatch
	patch.Name = p.AskOptional("New name")
	if v := p.Ask(choices("New category (blank to keep)", categories)); v != "" {
		c := models.Category(v)
		patch.Category = &c
	}
	patch.CareLevel = p.AskOptional("New care level")
	if v := p.Ask(choices("New watering schedule (blank to keep)", wateringSchedules)); v != "" {
		w := models.WateringSchedule(v)
		patch.WateringSchedule = &w
	}
	if v := p.Ask(choices("New sunlight preference (blank to keep)", sunlightPreferences)); v != "" {
		s := models.SunlightPreference(v)
		patch.SunlightPreference = &s
	}
	patch.Location = p.AskOptional("New location")
	if v := p.Ask(choices("New pot size (blank to keep)", potSizes)); v != "" {
		s := models.PotSize(v)
		patch.PotSize = &s
	}
	return patch
}

// LogInput asks for a care activity on plantID.
func (p *Prompter) LogInput(plantID int64) (models.LogInput, error) {
	in := models.LogInput{
		PlantID: plantID,
		LogType: models.LogType(p.Ask(choices("Log type", logTypes))),
	}
	hours, err := p.AskFloat("Sunlight hours")
	if err != nil {
		return in, err
	}
	in.SunlightHours = hours
	return in, nil
}

// LogPatch asks for log changes.
func (p *Prompter) LogPatch() (models.LogPatch, error) {
	var patch models.LogPatch
	if v := p.Ask(choices("New log type (blank to keep)", logTypes)); v != "" {
		t := models.LogType(v)
		patch.LogType = &t
	}
	hours, err := p.AskFloat("New sunlight hours")
	if err != nil {
		return patch, err
	}
	patch.SunlightHours = hours
	return patch, nil
}

// UserPatch asks for account changes.
func (p *Prompter) UserPatch() models.UserPatch {
	return models.UserPatch{
		Email:       p.AskOptional("New email"),
		DisplayName: p.AskOptional("New display name"),
		Password:    p.AskOptional("New password"),
	}
}

var (
	categories = []string{
		string(models.CategorySucculent), string(models.CategoryHerb), string(models.CategoryFern),
		string(models.CategoryFloweringPlant), string(models.CategoryVegetable), string(models.CategoryFoliagePlant),
	}
	potSizes = []string{
		string(models.PotSmall), string(models.PotMedium), string(models.PotLarge), string(models.PotXLarge),
	}
	wateringSchedules = []string{
		string(models.WaterDaily), string(models.WaterTwiceWeekly), string(models.WaterWeekly),
		string(models.WaterBiweekly), string(models.WaterMonthly), string(models.WaterInfrequent),
		string(models.WaterModerate), string(models.WaterConsistent), string(models.WaterWhenSoilIsDry),
		string(models.WaterFrequent), string(models.WaterOccasionally), string(models.WaterNone),
	}
	sunlightPreferences = []string{
		string(models.SunFull), string(models.SunPartial), string(models.ShadePartial), string(models.ShadeFull),
		string(models.LightBrightIndirect), string(models.LightIndirect), string(models.LightLow), string(models.LightMedium),
	}
	logTypes = []string{string(models.LogWater), string(models.LogFertilize), string(models.LogPrune)}
)

func choices(label string, opts []string) string {
	return fmt.Sprintf("%s [%s]", label, strings.Join(opts, "/"))
}

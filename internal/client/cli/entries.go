package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
)

// nowFn is a test seam for the default entry date.
var nowFn = time.Now

// Add prompts for an entry and stores it.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", a.out)
	if err != nil {
		return err
	}
	if date == "" {
		date = nowFn().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must look like %s", common.ErrorIncorrectPayload, models.DateLayout)
	}
	mood, err := getSimpleText(a.reader, "Mood (optional)", a.out)
	if err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "Text", a.out)
	if err != nil {
		return err
	}
	lines, err := GetMetrics(a.reader, a.out)
	if err != nil {
		return err
	}
	metrics, err := models.MetricsFromStrings(lines)
	if err != nil {
		return err
	}

	e, err := a.journal.Add(ctx, &models.Payload{
		Date:    date,
		Title:   title,
		Text:    text,
		Mood:    mood,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	if !e.IsEncrypted {
		fmt.Fprintln(a.out, warning("Journal is locked: entry stored unencrypted until the next rekey"))
	}
	fmt.Fprintln(a.out, success("Saved entry "+e.ID))
	return nil
}

// List prints one line per entry.
func (a *App) List(ctx context.Context) error {
	views, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}

	for _, v := range views {
		line := v.Entry.ID + "  " + v.Entry.CreatedAt.Local().Format("2006-01-02 15:04")
		if v.Payload != nil {
			line += "  " + color.New(color.Bold).Sprint(v.Payload.Title)
		}
		if label := statusLabel(v.Status); label != "" {
			line += "  " + label
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context, id string) error {
	v, err := a.journal.Get(ctx, id)
	if err != nil {
		return err
	}

	switch v.Status {
	case models.StatusEncrypted:
		fmt.Fprintln(a.out, warning("Entry "+id+" is encrypted"))
		fmt.Fprintln(a.out, hint("Run 'unlock' to read it"))
		return nil
	case models.StatusCorrupted:
		fmt.Fprintln(a.out, failure("Entry "+id+" cannot be opened with the current passphrase"))
		return nil
	}

	p := v.Payload
	fmt.Fprintln(a.out, color.New(color.Bold).Sprint(p.Title))
	fmt.Fprintln(a.out, "Date: "+p.Date)
	if p.Mood != "" {
		fmt.Fprintln(a.out, "Mood: "+p.Mood)
	}
	if p.Text != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, p.Text)
	}
	if len(p.Metrics) > 0 {
		fmt.Fprintln(a.out)
		names := make([]string, 0, len(p.Metrics))
		for name := range p.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(a.out, "%s = %g\n", name, p.Metrics[name])
		}
	}
	if !v.Entry.IsEncrypted {
		fmt.Fprintln(a.out, warning("Stored unencrypted"))
	}
	return nil
}

// Status prints session state and entry counts.
func (a *App) Status(ctx context.Context) error {
	ok, err := a.journal.IsSetUp(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, warning("Journal is not set up"))
		fmt.Fprintln(a.out, hint("Run 'setup' first"))
		return nil
	}

	views, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	counts := map[models.EntryStatus]int{}
	plain := 0
	for _, v := range views {
		counts[v.Status]++
		if !v.Entry.IsEncrypted {
			plain++
		}
	}

	state := "locked"
	if a.isUnlocked() {
		state = "unlocked"
	}
	fmt.Fprintf(a.out, "User: %s (%s)\n", a.userID, state)
	fmt.Fprintf(a.out, "Entries: %d\n", len(views))
	if n := counts[models.StatusCorrupted]; n > 0 {
		fmt.Fprintln(a.out, warning(fmt.Sprintf("%d entries cannot be opened", n)))
	}
	if plain > 0 {
		fmt.Fprintln(a.out, warning(fmt.Sprintf("%d entries are stored unencrypted", plain)))
	}
	return nil
}

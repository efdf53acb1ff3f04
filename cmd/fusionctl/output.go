package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/fusion"
	"github.com/jonwraymond/fusionapi/health"
)

// render writes v to w as indented JSON or as aligned text.
func render(w io.Writer, format string, v any) error {
	if format != "text" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch r := v.(type) {
	case *fusion.FusedCharacter:
		renderCharacter(tw, r)
	case *fusion.FusedCharacterList:
		renderList(tw, r)
	case cache.HistoryPage:
		renderHistory(tw, r)
	case fusion.CustomRecord:
		fmt.Fprintf(tw, "id\t%s\ncreatedAt\t%s\n", r.ID, r.CreatedAt)
	case fusion.Snapshot:
		renderSnapshot(tw, r)
	case health.Report:
		renderHealth(tw, r)
	default:
		return render(w, "json", v)
	}
	return tw.Flush()
}

func renderCharacter(w io.Writer, r *fusion.FusedCharacter) {
	c := r.Character
	fmt.Fprintf(w, "name\t%s\n", c.Name)
	fmt.Fprintf(w, "height\t%s\nmass\t%s\ngender\t%s\nbirth year\t%s\n", c.Height, c.Mass, c.Gender, c.BirthYear)
	fmt.Fprintf(w, "homeworld\t%s\n", c.Homeworld)
	if h := r.Homeworld; h != nil {
		fmt.Fprintf(w, "climate\t%s\nterrain\t%s\npopulation\t%s\n", h.Climate, h.Terrain, h.Population)
	}
	if wx := r.Weather; wx != nil {
		fmt.Fprintf(w, "weather\t%s, %.1f°C, %s, humidity %d%%, wind %.1f m/s\n",
			wx.Location, wx.Temperature, wx.Condition, wx.Humidity, wx.WindSpeed)
	}
	fmt.Fprintf(w, "cached\t%t\ntimestamp\t%s\n", r.Metadata.Cached, r.Metadata.Timestamp)
}

func renderList(w io.Writer, r *fusion.FusedCharacterList) {
	fmt.Fprintf(w, "NAME\tGENDER\tBIRTH YEAR\tHOMEWORLD\n")
	for _, c := range r.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Gender, c.BirthYear, c.Homeworld)
	}
	fmt.Fprintf(w, "\n%d of %d characters, cached %t\n", len(r.Results), r.Count, r.Metadata.Cached)
	if wx := r.Weather; wx != nil {
		fmt.Fprintf(w, "weather in %s: %.1f°C, %s\n", wx.Location, wx.Temperature, wx.Condition)
	}
}

func renderHistory(w io.Writer, p cache.HistoryPage) {
	fmt.Fprintf(w, "ID\tKEY\tCREATED\n")
	for _, e := range p.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Key, e.CreatedAt)
	}
	if p.NextCursor != "" {
		fmt.Fprintf(w, "\nnext cursor: %s\n", p.NextCursor)
	}
}

func renderSnapshot(w io.Writer, s fusion.Snapshot) {
	fmt.Fprintf(w, "PK\tSK\tTYPE\tCREATED\tEXPIRED\n")
	for _, r := range s.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", r.PartitionKey, r.SortKey, r.Type, r.CreatedAt, r.Expired)
	}
	fmt.Fprintf(w, "\n%d records, %d history entries\n", s.RecordCount, s.HistoryCount)
}

func renderHealth(w io.Writer, r health.Report) {
	fmt.Fprintf(w, "overall\t%s\n", r.Status)
	for name, c := range r.Checks {
		line := fmt.Sprintf("%s\t%s\t%s", name, c.Status, c.Message)
		if c.Error != "" {
			line += ": " + c.Error
		}
		fmt.Fprintln(w, line)
	}
}

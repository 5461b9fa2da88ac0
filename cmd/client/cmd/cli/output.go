package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"noisemap/internal/domain/marker"

	"github.com/fatih/color"
)

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
	titleColor = color.New(color.FgCyan, color.Bold)
)

// PrintMarkers выводит маркеры в выбранном формате.
func (rt *Runtime) PrintMarkers(markers []marker.Marker) error {
	if rt.JSON {
		return rt.PrintJSON(marker.ToPayloads(markers))
	}

	if len(markers) == 0 {
		warnColor.Fprintln(rt.Out, "Маркеры не найдены")
		return nil
	}

	if !rt.Table {
		for _, m := range markers {
			fmt.Fprintf(rt.Out, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
				m.ID, coord(m.Position.Lon), coord(m.Position.Lat),
				int(m.Type), m.Volume, int(m.AudioStatus), m.DisplayTitle())
		}
		return nil
	}

	w := tabwriter.NewWriter(rt.Out, 0, 0, 2, ' ', 0)
	titleColor.Fprintf(w, "ID\tДолгота\tШирота\tТип\tГромкость\tЗапись\tНазвание\t\n")
	for _, m := range markers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			m.ID,
			coord(m.Position.Lon),
			coord(m.Position.Lat),
			m.Type.Icon(),
			volume(m),
			audio(m.AudioStatus),
			truncate(m.DisplayTitle(), 40),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(rt.Out, "\nВсего маркеров: %d\n", len(markers))
	return nil
}

// PrintMarker выводит один маркер.
func (rt *Runtime) PrintMarker(m marker.Marker) error {
	if rt.JSON {
		return rt.PrintJSON(marker.ToPayload(m))
	}

	titleColor.Fprintf(rt.Out, "%s\n", m.DisplayTitle())
	fmt.Fprintf(rt.Out, "  ID:        %d\n", m.ID)
	fmt.Fprintf(rt.Out, "  Позиция:   %s, %s\n", coord(m.Position.Lon), coord(m.Position.Lat))
	fmt.Fprintf(rt.Out, "  Тип:       %s\n", m.Type.Icon())
	fmt.Fprintf(rt.Out, "  Громкость: %s\n", volume(m))
	fmt.Fprintf(rt.Out, "  Запись:    %s\n", audio(m.AudioStatus))
	return nil
}

func (rt *Runtime) PrintJSON(v any) error {
	encoder := json.NewEncoder(rt.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Success печатает сообщение об успешной операции.
func (rt *Runtime) Success(format string, args ...any) {
	if rt.JSON {
		return
	}
	okColor.Fprintf(rt.Out, "✓ "+format+"\n", args...)
}

func (rt *Runtime) Warn(format string, args ...any) {
	warnColor.Fprintf(rt.Out, format+"\n", args...)
}

func (rt *Runtime) Error(format string, args ...any) {
	errColor.Fprintf(rt.Out, format+"\n", args...)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func volume(m marker.Marker) string {
	if m.AudioStatus != marker.AudioRecorded {
		return "-"
	}
	return fmt.Sprintf("%d дБ", m.Volume)
}

func audio(s marker.AudioStatus) string {
	if s == marker.AudioRecorded {
		return "есть"
	}
	return "нет"
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

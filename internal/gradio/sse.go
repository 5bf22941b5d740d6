package gradio

import (
	"bufio"
	"io"
	"strings"
)

// Event одно событие из потока text/event-stream.
type Event struct {
	Name string
	Data string
}

// EventReader читает события SSE: поля "event:" и "data:", граница события
// пустая строка. Комментарии и неизвестные поля пропускаются.
type EventReader struct {
	r   *bufio.Reader
	cur Event
	err error
}

func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next читает следующее событие. После false смотрите Err.
func (er *EventReader) Next() bool {
	if er.err != nil {
		return false
	}
	er.cur = Event{}

	var (
		name    string
		data    []string
		hasData bool
	)
	emit := func() bool {
		er.cur = Event{Name: name, Data: strings.Join(data, "\n")}
		return true
	}

	for {
		line, err := er.r.ReadString('\n')
		if err != nil && line == "" {
			er.err = err
			if err == io.EOF && hasData {
				return emit()
			}
			return false
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if hasData {
				return emit()
			}
			name = ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
			hasData = true
		}

		if err == io.EOF {
			er.err = err
			if hasData {
				return emit()
			}
			return false
		}
	}
}

func (er *EventReader) Event() Event {
	return er.cur
}

// Err возвращает ошибку чтения; чистый EOF ошибкой не считается.
func (er *EventReader) Err() error {
	if er.err == io.EOF {
		return nil
	}
	return er.err
}

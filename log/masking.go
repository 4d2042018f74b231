/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unsafe"

	"github.com/ssgreg/logf"
)

const maskedValue = "***"

// StringMasker hides sensitive parts of a string.
type StringMasker interface {
	Mask(s string) string
}

// QueryMasker masks values of URL-encoded parameters ("email=jane%40example.com" becomes "email=***")
// and credentials of "Authorization: Basic ..." headers.
type QueryMasker struct {
	fields []string
	params *regexp.Regexp
}

var authHeaderRegExp = regexp.MustCompile(`(?i)(authorization:\s*(basic|bearer)\s+)\S+`)

// NewQueryMasker creates a masker for the given parameter names (matched case-insensitively).
func NewQueryMasker(fields ...string) *QueryMasker {
	m := &QueryMasker{}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			m.fields = append(m.fields, strings.ToLower(f))
			quoted = append(quoted, regexp.QuoteMeta(f))
		}
	}
	if len(quoted) != 0 {
		m.params = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)=[^&\s"]+`)
	}
	return m
}

// Mask implements StringMasker.
func (m *QueryMasker) Mask(s string) string {
	if m.params != nil && strings.IndexByte(s, '=') != -1 {
		s = m.params.ReplaceAllString(s, "${1}="+maskedValue)
	}
	if strings.Contains(strings.ToLower(s), "authorization") {
		s = authHeaderRegExp.ReplaceAllString(s, "${1}"+maskedValue)
	}
	return s
}

// MaskingLogger masks message texts, string fields and error fields before passing them on.
// Other field types are logged as is.
type MaskingLogger struct {
	log    FieldLogger
	masker StringMasker
}

// NewMaskingLogger wraps l with masking.
func NewMaskingLogger(l FieldLogger, m StringMasker) FieldLogger {
	return MaskingLogger{l, m}
}

func (l MaskingLogger) With(fs ...Field) FieldLogger {
	return MaskingLogger{l.log.With(l.maskFields(fs)...), l.masker}
}

func (l MaskingLogger) Debug(text string, fs ...Field) {
	l.log.Debug(l.masker.Mask(text), l.maskFields(fs)...)
}

func (l MaskingLogger) Info(text string, fs ...Field) {
	l.log.Info(l.masker.Mask(text), l.maskFields(fs)...)
}

func (l MaskingLogger) Warn(text string, fs ...Field) {
	l.log.Warn(l.masker.Mask(text), l.maskFields(fs)...)
}

func (l MaskingLogger) Error(text string, fs ...Field) {
	l.log.Error(l.masker.Mask(text), l.maskFields(fs)...)
}

func (l MaskingLogger) Debugf(format string, args ...interface{}) { l.Debug(fmt.Sprintf(format, args...)) }

func (l MaskingLogger) Infof(format string, args ...interface{}) { l.Info(fmt.Sprintf(format, args...)) }

func (l MaskingLogger) Warnf(format string, args ...interface{}) { l.Warn(fmt.Sprintf(format, args...)) }

func (l MaskingLogger) Errorf(format string, args ...interface{}) { l.Error(fmt.Sprintf(format, args...)) }

func (l MaskingLogger) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.log.AtLevel(level, func(logFunc LogFunc) {
		fn(func(msg string, fs ...Field) {
			logFunc(l.masker.Mask(msg), l.maskFields(fs)...)
		})
	})
}

func (l MaskingLogger) WithLevel(level Level) FieldLogger {
	return MaskingLogger{l.log.WithLevel(level), l.masker}
}

func (l MaskingLogger) maskFields(fields []Field) []Field {
	var res []Field
	for i := range fields {
		masked, changed := l.maskField(fields[i])
		if !changed {
			continue
		}
		if res == nil {
			res = append([]Field(nil), fields...)
		}
		res[i] = masked
	}
	if res == nil {
		return fields
	}
	return res
}

func (l MaskingLogger) maskField(field Field) (Field, bool) {
	switch field.Type {
	case logf.FieldTypeBytesToString:
		s := *(*string)(unsafe.Pointer(&field.Bytes)) // nolint: gosec
		if masked := l.masker.Mask(s); masked != s {
			return String(field.Key, masked), true
		}
	case logf.FieldTypeError:
		if err, ok := field.Any.(error); ok && err != nil {
			s := err.Error()
			if masked := l.masker.Mask(s); masked != s {
				return NamedError(field.Key, errors.New(masked)), true
			}
		}
	}
	return field, false
}

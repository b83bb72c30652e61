// Package deeplink carries frames in a single URL query parameter so a
// transmission can be handed over as a link instead of a QR sequence.
package deeplink

import (
	"net/url"
	"strings"
)

const (
	DefaultHost  = "airgap-wallet://"
	DefaultParam = "d"
)

// FramesToURL joins frames with commas under param: host?param=f1,f2,...
// Empty host or param select the defaults. Frames are base58 and need no
// escaping.
func FramesToURL(frames []string, host, param string) string {
	if host == "" {
		host = DefaultHost
	}
	if param == "" {
		param = DefaultParam
	}
	var b strings.Builder
	b.WriteString(host)
	b.WriteByte('?')
	b.WriteString(url.QueryEscape(param))
	b.WriteByte('=')
	b.WriteString(strings.Join(frames, ","))
	return b.String()
}

// URLToFrames extracts the frames stored under param. It returns nil when
// param is empty, the URL has no query, or the parameter is missing.
func URLToFrames(raw, param string) []string {
	if param == "" {
		return nil
	}
	_, query, ok := strings.Cut(raw, "?")
	if !ok {
		return nil
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}
	values, err := url.ParseQuery(query)
	if err != nil && len(values) == 0 {
		return nil
	}
	value := values.Get(param)
	if value == "" {
		return nil
	}
	var frames []string
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			frames = append(frames, f)
		}
	}
	return frames
}

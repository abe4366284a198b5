package devserver

import (
	"bytes"
	"net/http"
	"strings"
)

const maxInjectSize = 512 * 1024

var (
	closingBody = []byte("</body>")
	scriptTag   = []byte(`<script src="` + ScriptPath + `"></script>`)
)

// injectReloadScript adds the reload client to HTML pages. Pages larger
// than maxInjectSize are passed through untouched.
func injectReloadScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		iw := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(iw, r)
		iw.finish()
	})
}

// injector buffers an HTML response so the script can be placed before </body>.
type injector struct {
	http.ResponseWriter
	status      int
	buf         []byte
	buffering   bool
	passthrough bool
	wroteHeader bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	if i.passthrough {
		i.writeHeader()
	}
}

func (i *injector) writeHeader() {
	if !i.wroteHeader {
		i.wroteHeader = true
		i.ResponseWriter.WriteHeader(i.status)
	}
}

func (i *injector) Write(data []byte) (int, error) {
	if !i.buffering && !i.passthrough {
		ct := i.Header().Get("Content-Type")
		if i.status != http.StatusOK || (ct != "" && !strings.Contains(ct, "text/html")) {
			i.passthrough = true
		} else {
			i.buffering = true
		}
	}
	if i.passthrough {
		i.writeHeader()
		return i.ResponseWriter.Write(data)
	}

	if len(i.buf)+len(data) > maxInjectSize {
		i.passthrough = true
		i.buffering = false
		i.writeHeader()
		if len(i.buf) > 0 {
			if _, err := i.ResponseWriter.Write(i.buf); err != nil {
				return 0, err
			}
			i.buf = nil
		}
		return i.ResponseWriter.Write(data)
	}
	i.buf = append(i.buf, data...)
	return len(data), nil
}

func (i *injector) finish() {
	if !i.buffering {
		i.writeHeader()
		return
	}

	page := i.buf
	if idx := bytes.LastIndex(page, closingBody); idx >= 0 {
		page = bytes.Join([][]byte{page[:idx], scriptTag, page[idx:]}, nil)
	} else {
		page = append(page, scriptTag...)
	}
	i.Header().Del("Content-Length")
	i.writeHeader()
	_, _ = i.ResponseWriter.Write(page)
}

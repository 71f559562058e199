package multired

import (
	"strconv"
	"strings"
)

// adapter maps one network's raw single-publish payload onto the canonical
// Result. Most networks share the passthrough mapping; WhatsApp is the one
// structurally different case and gets its own adapter.
type adapter func(Target, *SingleResponse) Result

var adapters = map[Target]adapter{
	WhatsApp: normalizeWhatsApp,
	TikTok:   normalizeTikTok,
}

// NormalizeSingle converts a single-target success payload into a canonical
// Result for the given target.
func NormalizeSingle(target Target, resp *SingleResponse) Result {
	fn, ok := adapters[target]
	if !ok {
		fn = normalizePassthrough
	}
	return fn(target, resp)
}

func normalizePassthrough(target Target, resp *SingleResponse) Result {
	r := Result{
		Target:     target,
		Validation: resp.Validation,
		Message:    resp.Message,
	}
	if resp.Adaptation != nil {
		r.AdaptedText = resp.Adaptation.Text
		r.Hashtags = resp.Adaptation.Hashtags
	}
	if resp.Publication != nil {
		r.PublishedID = resp.Publication.ID
		r.PublicLink = resp.Publication.Link
	}
	if resp.Image != nil {
		r.Extra = setExtra(r.Extra, "image_url", resp.Image.URL)
	}
	return r
}

// normalizeWhatsApp synthesizes a Success from the delivery receipt: the
// message SID becomes the published id and there is no public link.
func normalizeWhatsApp(target Target, resp *SingleResponse) Result {
	r := normalizePassthrough(target, resp)
	r.PublicLink = ""
	if resp.Delivery != nil {
		r.PublishedID = resp.Delivery.MessageSID
		r.Extra = setExtra(r.Extra, "status", resp.Delivery.Status)
		r.Extra = setExtra(r.Extra, "to", resp.Delivery.To)
	}
	return r
}

// normalizeTikTok prefers the publish id and share URL TikTok reports in
// place of the post id / permalink other networks use.
func normalizeTikTok(target Target, resp *SingleResponse) Result {
	r := normalizePassthrough(target, resp)
	if p := resp.Publication; p != nil {
		if p.PublishID != "" {
			r.PublishedID = p.PublishID
		}
		if p.ShareURL != "" {
			r.PublicLink = p.ShareURL
		}
	}
	return r
}

// NormalizeMulti converts a batch response into an aggregate Outcome. The
// per-target entries arrive already segmented; the backend summary is taken
// verbatim so client and server tallies cannot disagree.
func NormalizeMulti(resp *MultiResponse) *Outcome {
	out := &Outcome{
		PerTarget:  make(map[Target]Result, len(resp.Results)),
		Summary:    normalizeSummary(resp.Summary),
		Validation: resp.Validation,
	}
	for name, entry := range resp.Results {
		target, ok := ParseTarget(name)
		if !ok {
			// Unknown network names are kept under their raw name so
			// nothing the backend reports is silently dropped.
			target = Target(name)
		}
		out.PerTarget[target] = normalizeEntry(target, entry)
	}
	return out
}

func normalizeEntry(target Target, entry NetworkResult) Result {
	if entry.Estado != estadoExitoso {
		msg := entry.Error
		if msg == "" {
			msg = entry.Mensaje
		}
		if msg == "" {
			msg = "publish failed"
		}
		return Result{Target: target, Err: msg}
	}

	r := Result{
		Target:      target,
		PublishedID: entry.ID,
		PublicLink:  entry.Link,
		Message:     entry.Mensaje,
	}
	if entry.Adaptation != nil {
		r.AdaptedText = entry.Adaptation.Text
		r.Hashtags = entry.Adaptation.Hashtags
	}
	if entry.PublishID != "" {
		r.PublishedID = entry.PublishID
	}
	if entry.ShareURL != "" {
		r.PublicLink = entry.ShareURL
	}
	r.Extra = setExtra(r.Extra, "image_url", entry.ImageURL)
	r.Extra = setExtra(r.Extra, "status", entry.Status)
	r.Extra = setExtra(r.Extra, "video_id", entry.VideoID)
	r.Extra = setExtra(r.Extra, "cuenta", entry.Account)
	r.Extra = setExtra(r.Extra, "visibilidad", entry.Visibility)
	r.Extra = setExtra(r.Extra, "nota", entry.Note)
	return r
}

func normalizeSummary(s BackendSummary) Summary {
	return Summary{
		TotalNetworks: s.TotalRedes,
		ValidNetworks: s.RedesValidas,
		Succeeded:     s.Exitosos,
		Failed:        s.Fallidos,
		SuccessRate:   parseRate(s.TasaExito),
		RawRate:       s.TasaExito,
		Elapsed:       s.TiempoSegundos,
	}
}

// parseRate reads the backend's "tasa_exito" percentage ("50.0%") into a
// float. The backend value is authoritative; this never recomputes from the
// success/failure counts.
func parseRate(raw string) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if trimmed == "" {
		return 0
	}
	rate, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return rate
}

func setExtra(m map[string]string, key, value string) map[string]string {
	if value == "" {
		return m
	}
	if m == nil {
		m = make(map[string]string)
	}
	m[key] = value
	return m
}

package multired

// Wire shapes for the publish endpoints. Field names follow the backend's
// JSON contract verbatim; the normalizer maps them onto the canonical Result.

// Adaptation is the backend's per-network rewrite of the submitted text.
type Adaptation struct {
	Text                 string   `json:"text"`
	Hashtags             []string `json:"hashtags"`
	CharacterCount       int      `json:"character_count"`
	SuggestedImagePrompt string   `json:"suggested_image_prompt,omitempty"`
	TTSText              string   `json:"tts_text,omitempty"`
	ImageURL             string   `json:"image_url,omitempty"`
}

// GeneratedImage describes AI-generated media attached to a publish.
type GeneratedImage struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// Publication is the per-network publish acknowledgement for link-style
// networks (facebook, instagram, linkedin, tiktok).
type Publication struct {
	ID        string `json:"id,omitempty"`
	Link      string `json:"link,omitempty"`
	PublishID string `json:"publish_id,omitempty"`
	ShareURL  string `json:"share_url,omitempty"`
	Status    string `json:"status,omitempty"`
	Privacy   string `json:"privacy,omitempty"`
}

// Delivery is WhatsApp's receipt. There is no public link or post id; the
// message SID is the only durable identifier.
type Delivery struct {
	MessageSID string `json:"message_sid"`
	Status     string `json:"status"`
	To         string `json:"to"`
}

// SingleResponse is the success body of POST /api/test/{network}.
type SingleResponse struct {
	Validation  *Validation     `json:"validacion"`
	Adaptation  *Adaptation     `json:"adaptacion"`
	Image       *GeneratedImage `json:"imagen_generada,omitempty"`
	Publication *Publication    `json:"publicacion,omitempty"`
	Delivery    *Delivery       `json:"envio,omitempty"`
	Message     string          `json:"mensaje"`
}

// NetworkResult is one entry of the batch response's "resultados" map.
type NetworkResult struct {
	Estado     string      `json:"estado"`
	ID         string      `json:"id,omitempty"`
	Link       string      `json:"link,omitempty"`
	Error      string      `json:"error,omitempty"`
	Mensaje    string      `json:"mensaje,omitempty"`
	Adaptation *Adaptation `json:"adaptacion,omitempty"`
	ImageURL   string      `json:"imagen_url,omitempty"`
	ShareURL   string      `json:"share_url,omitempty"`
	PublishID  string      `json:"publish_id,omitempty"`
	VideoID    string      `json:"video_id,omitempty"`
	Status     string      `json:"status,omitempty"`
	Account    string      `json:"cuenta,omitempty"`
	Visibility string      `json:"visibilidad,omitempty"`
	Note       string      `json:"nota,omitempty"`
}

const estadoExitoso = "exitoso"

// BackendSummary is the server-computed tally block of the batch response.
// tasa_exito arrives as a formatted percentage string.
type BackendSummary struct {
	TotalRedes     int     `json:"total_redes"`
	RedesValidas   int     `json:"redes_validas"`
	Exitosos       int     `json:"exitosos"`
	Fallidos       int     `json:"fallidos"`
	TasaExito      string  `json:"tasa_exito"`
	TiempoSegundos float64 `json:"tiempo_segundos"`
}

// MultiResponse is the success body of POST /api/posts/publish-multi.
type MultiResponse struct {
	Validation *Validation              `json:"validacion"`
	Results    map[string]NetworkResult `json:"resultados"`
	Summary    BackendSummary           `json:"resumen"`
}

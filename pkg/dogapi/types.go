package dogapi

// StatusUnknownBreed is the status reported for a breed that is not in the
// upstream breed list.
const StatusUnknownBreed = "error: unknown breed"

// Image is a single dog image as returned by the upstream API.
// Message holds the image URL.
type Image struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}

// ImageList is a batch of image URLs.
type ImageList struct {
	Images []string `json:"images"`
	Status string   `json:"status"`
}

type breedListEnvelope struct {
	Message map[string][]string `json:"message"`
	Status  string              `json:"status"`
}

type imagesEnvelope struct {
	Message []string `json:"message"`
	Status  string   `json:"status"`
}

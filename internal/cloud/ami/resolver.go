// Package ami resolves symbolic image tags to concrete AMI ids through a
// published plain-text manifest.
package ami

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	TagStandard = "standard"
	TagHPC      = "hpc"
)

var manifestURLs = map[string]string{
	TagStandard: "https://s3.amazonaws.com/gridctl-images/cluster-std",
	TagHPC:      "https://s3.amazonaws.com/gridctl-images/cluster-hvm",
}

// ResolutionError marks a manifest that could not be fetched. Launch must
// not proceed to instance creation when it sees one.
type ResolutionError struct {
	Tag string
	Err error
}

func (e *ResolutionError) Error() string {
	return "resolving image tag \"" + e.Tag + "\": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver turns an image selector into an AMI id. Selectors that are not
// known symbolic tags pass through unchanged, assumed to already be ids.
type Resolver struct {
	Client *http.Client
	URLs   map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{
		Client: &http.Client{Timeout: 15 * time.Second},
		URLs:   manifestURLs,
	}
}

func (r *Resolver) Resolve(selector string) (string, error) {
	url, symbolic := r.URLs[selector]
	if !symbolic {
		return selector, nil
	}
	response, err := r.Client.Get(url)
	if err != nil {
		return "", &ResolutionError{Tag: selector, Err: err}
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", &ResolutionError{Tag: selector, Err: errors.Errorf("manifest returned status %d", response.StatusCode)}
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &ResolutionError{Tag: selector, Err: err}
	}
	imageID := strings.TrimSpace(string(body))
	if imageID == "" {
		return "", &ResolutionError{Tag: selector, Err: errors.New("manifest is empty")}
	}
	log.Debug().Msgf("Image tag %q resolved to %s", selector, imageID)
	return imageID, nil
}

package api

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"net/http"
)

type MediaResponseType string

const (
	JPEG MediaResponseType = "jpeg"
	PNG  MediaResponseType = "png"
)

// @Summary	fetch the most recently received frame
// @Router		/api/frame [get]
// @Router		/api/frame/{format} [get]
// @Tags		media
// @Param		format	path	MediaResponseType	false	"The image type to return, png by default"
// @Success	200
// @Failure	400	{string}	string	"The requested image format is not supported"
// @Failure	424	{string}	string	"No frame has been received yet"
// @Produce	png
// @Produce	jpeg
func (a *Api) handleFrame(w http.ResponseWriter, req *http.Request) {
	format := MediaResponseType(req.PathValue("format"))
	if format == "" {
		format = PNG
	}
	if format != PNG && format != JPEG {
		http.Error(w, fmt.Sprintf("unsupported image format %q", format), http.StatusBadRequest)
		return
	}

	frame := a.frames.Snapshot()
	if frame == nil {
		http.Error(w, "No frame received yet", http.StatusFailedDependency)
		return
	}
	img := frame.Image()

	var err error
	switch format {
	case JPEG:
		w.Header().Set("Content-Type", "image/jpeg")
		err = jpeg.Encode(w, img, nil)
	default:
		w.Header().Set("Content-Type", "image/png")
		err = png.Encode(w, img)
	}
	if err != nil {
		a.log.Warn(fmt.Sprintf("could not encode frame: %s", err))
	}
}

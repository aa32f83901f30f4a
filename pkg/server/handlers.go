//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/binkynet/LocalCloudlet/model"
	"github.com/binkynet/LocalCloudlet/pkg/service/documents"
)

// PinStateResponse is returned by the pin endpoints.
type PinStateResponse struct {
	Pin   string `json:"pin"`
	State string `json:"state"`
}

// PinCommandRequest is the body of PUT /api/pins/:pin.
type PinCommandRequest struct {
	Mode   string `json:"mode"`
	Action string `json:"action"`
}

// SaveResponse is returned by the save endpoint.
type SaveResponse struct {
	ID string `json:"id"`
}

// CountResponse is returned by the count endpoint.
type CountResponse struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}

// GET /api/document/findOne/:collection/:id
func (s *Server) handleFindOne(c echo.Context) error {
	req := model.NewLookupRequest(c.Param("collection"), c.Param("id"))
	doc, err := s.service.FindOne(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// POST /api/document/save/:collection
func (s *Server) handleSave(c echo.Context) error {
	var doc documents.Document
	if err := bindBody(c, &doc); err != nil {
		return err
	}
	if doc == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "document body is empty")
	}
	id, err := s.service.SaveDocument(c.Request().Context(), c.Param("collection"), doc)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, SaveResponse{ID: id})
}

// GET /api/document/count/:collection
func (s *Server) handleCount(c echo.Context) error {
	collection := c.Param("collection")
	n, err := s.service.CountDocuments(c.Request().Context(), collection)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, CountResponse{Collection: collection, Count: n})
}

// GET /api/pins
func (s *Server) handleListPins(c echo.Context) error {
	pins, err := s.service.Pins()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pins)
}

// GET /api/pins/:pin
func (s *Server) handleGetPin(c echo.Context) error {
	addr, err := model.ParsePinAddress(c.Param("pin"))
	if err != nil {
		return toHTTPError(err)
	}
	state, err := s.service.GetPinState(addr)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, PinStateResponse{Pin: addr.String(), State: state.String()})
}

// PUT /api/pins/:pin
func (s *Server) handlePutPin(c echo.Context) error {
	addr, err := model.ParsePinAddress(c.Param("pin"))
	if err != nil {
		return toHTTPError(err)
	}
	var req PinCommandRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	cmd := model.PinCommand{Address: addr, Mode: model.PinModeDigitalOutput}
	if req.Mode != "" {
		if cmd.Mode, err = model.ParsePinMode(req.Mode); err != nil {
			return toHTTPError(err)
		}
	}
	if cmd.Mode == model.PinModeDigitalOutput {
		if cmd.Action, err = model.ParsePinState(req.Action); err != nil {
			return toHTTPError(err)
		}
	}
	ctx := c.Request().Context()
	if err := s.service.ExecutePin(ctx, cmd); err != nil {
		return toHTTPError(err)
	}
	state, err := s.service.GetPinState(addr)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, PinStateResponse{Pin: addr.String(), State: state.String()})
}

// GET /api/status
func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.Status())
}

// bindBody binds only the request body, so path parameters
// do not end up in the target.
func bindBody(c echo.Context, target interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, target)
}

// toHTTPError converts an error into an HTTP error with matching status.
func toHTTPError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case model.IsNotFound(err):
		code = http.StatusNotFound
	case model.IsInvalidArgument(err), model.IsInvalidPin(err):
		code = http.StatusBadRequest
	case model.IsInvalidDirection(err):
		code = http.StatusConflict
	case model.IsProviderClosed(err):
		code = http.StatusServiceUnavailable
	}
	return echo.NewHTTPError(code, err.Error())
}

/*
Copyright 2024 Terrazzo Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tunnelcommon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gravitational/trace"
)

// WriteError maps err to an HTTP status code and populates the
// x-error-description response header with a single-line "[Kind]
// message" diagnostic.
func WriteError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	w.Header().Set("x-error-description", fmt.Sprintf("[%s] %s", kind, trace.UserMessage(err)))
	w.WriteHeader(status)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidAuthCode):
		return http.StatusForbidden, "InvalidAuthCode"
	case trace.IsBadParameter(err):
		return http.StatusBadRequest, "BadParameter"
	case trace.IsAccessDenied(err):
		return http.StatusForbidden, "AccessDenied"
	case trace.IsNotFound(err):
		return http.StatusNotFound, "NotFound"
	case trace.IsConnectionProblem(err):
		return http.StatusServiceUnavailable, "Unavailable"
	case trace.IsLimitExceeded(err):
		return http.StatusTooManyRequests, "LimitExceeded"
	default:
		return http.StatusInternalServerError, "Fatal"
	}
}

// Package client is the HTTP transport of storygen.
//
// HTTPClient attaches the stored bearer credential unless a request opts
// out, tags every call with an X-Request-ID, decodes JSON replies and turns
// failures into typed errors:
//
//   - ErrNetwork: no response was received;
//   - *MalformedResponseError: the body was not JSON;
//   - *RequestFailedError: non-2xx status, message taken from "detail" or
//     "message".
//
// A 401 additionally invokes the unauthorized callback the client was built
// with, so the session layer can drop the stale credential and ask the user
// to sign in again. Both typed errors match ErrUnauthorized in that case.
//
// The API interface layers the service endpoints on top: Ping, Signup,
// Login, Me and GenerateStories.
package client

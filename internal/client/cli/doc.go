// Package cli provides the interactive storygen command-line client.
//
// It wires configuration, the local state database, the HTTP client, the
// session store and the upload orchestrator, and drives them from a REPL.
// Typical flow: restore the stored session, upload a document, read the
// generated user stories, export them as PDF, DOCX or HTML.
//
// Uploading while signed out opens a credential prompt after the command;
// once the user signs in the upload continues on its own. A 401 from the
// server opens the same prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

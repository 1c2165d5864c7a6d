// Package vectordb holds helpers shared by the vector store adapters.
package vectordb

import "github.com/google/uuid"

// NamespaceID derives the UUID namespace for a store namespace name.
func NamespaceID(namespace string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(namespace))
}

// PointID returns the deterministic id of a document. The same page content
// written under the same namespace always maps to the same id, so re-ingesting
// a patch overwrites its own points and nothing else.
func PointID(namespace, pageContent string) string {
	return uuid.NewSHA1(NamespaceID(namespace), []byte(pageContent)).String()
}

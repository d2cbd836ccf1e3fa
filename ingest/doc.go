// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package ingest routes update payloads to format-specific loaders by
content type.

The pipeline for one content stream is:

 1. ResolveContentType picks the effective media type: the
    update.contentType request parameter wins over the stream's own
    Content-Type, and writer parameters after ";" are stripped.
 2. Registry.Lookup maps the type to a Loader. Canonical keys are
    application/{xml,json,csv,javabin}; text/{xml,json,csv} alias the
    same loader instances.
 3. When the loader prefers a response writer and the request does not
    name one, Dispatcher layers the preference in as a default.
 4. Loader.Load parses the stream and feeds commands to an
    update.Processor chain. Loader errors pass through the dispatcher
    untouched.

The registry is built once and never mutated, so lookups need no
synchronization.
*/
package ingest

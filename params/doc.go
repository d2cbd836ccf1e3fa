// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package params models request parameters as layered key/value sources.

A Params is any read-only string map (MapParams for literals, URLParams
over url.Values). Layer stacks sources so the first hit wins: explicit
request parameters sit above endpoint presets, and WrapDefaults slides
loader-preferred values underneath everything else without ever
shadowing a key the upper layers carry.

Well-known parameter names (update.contentType, wt, commit, ...) live
here as constants, and the Get* helpers read typed values with
defaults.
*/
package params

/*
Package htmlsnap compares HTML output against recorded reference HTML
snapshots. Instead of comparing text, both documents are parsed and the
resulting trees are walked in lock-step. Some differences between a
snapshot and the actual output are expected and must not fail a test:

  - the system under test runs under another base URL than the one the
    snapshot was recorded with,
  - the output carries server generated values like nonces or ids,
  - attributes hold values derived from the current time.

A Driver is configured once with rules for these differences and then
matches any number of documents:

	var cfg htmlsnap.Config
	cfg.CurrentURL = "https://localhost:8080/blog"
	cfg.SnapshotURL = "http://example.com"
	cfg.RegisterTolerableDifferences(nonce).
		RegisterTolerableDifferencePrefixes("nonce-").
		DeclareTimeDependentAttributes(".post", "data-id")
	drv, err := htmlsnap.NewDriver(&cfg)
	…
	err = drv.Match(snapshot, output)

# Reference Snapshots

A snapshot is a template. Before comparison, spans delimited by {{ and }}
are evaluated with Go's text/template against Config.Vars:

	<a href="http://example.com/post/{{.postID}}">{{.title}}</a>

Referencing a variable that is not set fails the comparison with an
EvaluationError. Snapshots without spans are compared verbatim. To record
a snapshot from actual output use Driver.Prepare, which escapes delimiters
found in the output.

# Base URLs

Every absolute URL in the snapshot that starts with the snapshot base URL
matches the same URL in the output when it starts with the current base URL
instead. The rest of the URL, e.g. path, query and fragment, must be
equal. With the configuration above

	http://example.com/x

in the snapshot matches

	https://localhost:8080/blog/x

in the output. Both base URLs are handled the same way in the snapshot
and the output, so a document always matches itself. A base URL only
matches a complete host, port and path segment, i.e. http://example.com
does not match http://example.community.
URLs with escaped slashes as found in inline JSON are handled the same way.

# Tolerable Differences

A value registered with Config.RegisterTolerableDifferences is accepted as
an attribute value or text content of the output wherever it occurs,
whatever the snapshot has at that position. Registered prefixes and
postfixes extend this to values like "prefix-23" or "23-postfix". A value
with both a prefix and a postfix is only accepted when both are registered.

# Time-Dependent Attributes

Attributes declared with Config.DeclareTimeDependentAttributes may have any
value in the output as long as the snapshot has the attribute at the same
element. With a scope selector, this only holds for elements matching the
selector and their descendants. Outside of all scopes the attribute is
compared exactly, even if it is also declared without a scope.

# Mismatches

Comparison stops at the first divergence that no rule accepts. It is
reported as *Mismatch with the path to the diverging node and both values.
*/
package htmlsnap

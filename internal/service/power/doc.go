// Package power shuts the local machine down once the dead man's switch trips.
package power

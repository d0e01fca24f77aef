// Package domain models ADCIRC ocean-model mesh and output data.
//
// # Mesh file (fort.14)
//
// The grid and boundary file is a strict sequential grammar of
// whitespace-delimited text records. Every count read from the file fixes how
// many of the following lines belong to the next section:
//
//	AGRID                          free-text description
//	NE NP                          element and node counts
//	JN X Y DP                      NP lines: id, longitude, latitude, depth
//	JE NHY NM1 NM2 NM3             NE lines: id, vertex count, three node ids
//	NOPE                           elevation-specified boundary segments
//	NETA                           total elevation boundary nodes
//	  NVDLL [IBTYPEE]              per segment: length, optional type
//	  NBDV                         NVDLL lines: node id
//	NBOU                           normal-flow boundary segments
//	NVEL                           total normal-flow boundary nodes
//	  NVELL IBTYPE                 per segment: length and boundary type
//	  <columns by IBTYPE>          NVELL lines, see [BoundaryType]
//
// Count lines may carry trailing commentary ("1 = Number of open
// boundaries"); only the leading token is read. Node and element ids must run
// 1..N in file order. Only triangular elements are supported.
//
// # Scalar output file (fort.63, maxele.63)
//
//	RUNDES RUNID AGRID             free-text description
//	NDSETSE NP DTDP*NSPOOLGE NSPOOLGE IRTYPE
//	TIME IT                        one header per timestep block
//	k ETA(k)                       NP lines per block
//
// A simulation that stops early leaves fewer blocks on disk than NDSETSE
// declares. Blocks are located by position (every NP+1 lines), never by
// matching header content, and an incomplete trailing block is dropped. The
// result is a degraded but valid [FieldSeries] whose [Shortfall] records how
// many blocks were found against how many were declared.
//
// Unknown values:
//
//	-99999.0 is the ADCIRC fill value for dry or never-wetted nodes. It is
//	replaced with NaN on read and written back as -99999.0.
//
// # Errors
//
// Parsing either format fails with one of [FormatError] (file missing,
// unreadable, or a header that contradicts the caller), [TruncatedInputError]
// (end of input before a declared count is satisfied), or [ParseError] (a
// token that is not the expected number, too few columns, out-of-sequence
// ids, or an unsupported boundary type). A truncated field file is the single
// case reported as a diagnostic rather than an error.
package domain

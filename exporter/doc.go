/*
Package exporter turns stored records into CSV.

Two consumers share one query and writer:

  - WriteRecords streams the filtered result set row by row to any io.Writer;
    the on-demand /api/export/csv endpoint passes the HTTP response writer.
  - Snapshot writes the same CSV to a file in the auto-export directory after
    every record write, named by the sanitized participant id and mode, so an
    experimenter can watch results accumulate without hitting the API.

Rows are ordered by session start time, then item order index. The column
order is fixed (Header) and identical for both paths.
*/
package exporter

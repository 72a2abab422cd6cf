// Package etl holds the fixed warehouse pipeline: the COPY statements that
// fill the staging tables from S3, the INSERT ... SELECT statements that fill
// the analytics tables, and the ordered plan that ties them together.
//
// Every statement runs on its own and is committed before the next one
// starts. If step N fails, steps 1..N-1 stay committed and no later step
// runs. There is no retry and no resumption; reruns start from the top and
// rely on the quality pass to remove the duplicates an append produces.
package etl

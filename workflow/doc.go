// Package workflow holds the status rules of the print shop: document
// numbering, the job, order and invoice transition tables, and the
// derivation of an order's status from its jobs. Nothing here touches
// the database; services apply these rules inside transactions.
package workflow

// Package cwe provides a static lookup table of Common Weakness Enumeration
// definitions, keyed by their canonical "CWE-<id>" identifier.
package cwe

// Definition is one CWE entry.
type Definition struct {
	ID          int
	Name        string
	Description string
}

// definitions holds the weaknesses most commonly referenced in pentest
// findings. Sourced from the MITRE CWE list (v4.x).
var definitions = map[string]Definition{
	"CWE-20":   {ID: 20, Name: "Improper Input Validation", Description: "The product receives input or data, but it does not validate or incorrectly validates that the input has the properties that are required to process the data safely and correctly."},
	"CWE-22":   {ID: 22, Name: "Improper Limitation of a Pathname to a Restricted Directory ('Path Traversal')", Description: "The product uses external input to construct a pathname that is intended to identify a file or directory that is located underneath a restricted parent directory, but the product does not properly neutralize special elements within the pathname."},
	"CWE-73":   {ID: 73, Name: "External Control of File Name or Path", Description: "The product allows user input to control or influence paths or file names that are used in filesystem operations."},
	"CWE-77":   {ID: 77, Name: "Improper Neutralization of Special Elements used in a Command ('Command Injection')", Description: "The product constructs all or part of a command using externally-influenced input, but it does not neutralize or incorrectly neutralizes special elements that could modify the intended command."},
	"CWE-78":   {ID: 78, Name: "Improper Neutralization of Special Elements used in an OS Command ('OS Command Injection')", Description: "The product constructs all or part of an OS command using externally-influenced input, but it does not neutralize or incorrectly neutralizes special elements that could modify the intended OS command."},
	"CWE-79":   {ID: 79, Name: "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')", Description: "The product does not neutralize or incorrectly neutralizes user-controllable input before it is placed in output that is used as a web page that is served to other users."},
	"CWE-89":   {ID: 89, Name: "Improper Neutralization of Special Elements used in an SQL Command ('SQL Injection')", Description: "The product constructs all or part of an SQL command using externally-influenced input, but it does not neutralize or incorrectly neutralizes special elements that could modify the intended SQL command."},
	"CWE-90":   {ID: 90, Name: "Improper Neutralization of Special Elements used in an LDAP Query ('LDAP Injection')", Description: "The product constructs all or part of an LDAP query using externally-influenced input, but it does not neutralize or incorrectly neutralizes special elements that could modify the intended LDAP query."},
	"CWE-94":   {ID: 94, Name: "Improper Control of Generation of Code ('Code Injection')", Description: "The product constructs all or part of a code segment using externally-influenced input, but it does not neutralize or incorrectly neutralizes special elements that could modify the syntax or behavior of the intended code segment."},
	"CWE-116":  {ID: 116, Name: "Improper Encoding or Escaping of Output", Description: "The product prepares a structured message for communication with another component, but encoding or escaping of the data is either missing or done incorrectly."},
	"CWE-119":  {ID: 119, Name: "Improper Restriction of Operations within the Bounds of a Memory Buffer", Description: "The product performs operations on a memory buffer, but it reads from or writes to a memory location outside the buffer's intended boundary."},
	"CWE-200":  {ID: 200, Name: "Exposure of Sensitive Information to an Unauthorized Actor", Description: "The product exposes sensitive information to an actor that is not explicitly authorized to have access to that information."},
	"CWE-269":  {ID: 269, Name: "Improper Privilege Management", Description: "The product does not properly assign, modify, track, or check privileges for an actor, creating an unintended sphere of control for that actor."},
	"CWE-287":  {ID: 287, Name: "Improper Authentication", Description: "When an actor claims to have a given identity, the product does not prove or insufficiently proves that the claim is correct."},
	"CWE-295":  {ID: 295, Name: "Improper Certificate Validation", Description: "The product does not validate, or incorrectly validates, a certificate."},
	"CWE-306":  {ID: 306, Name: "Missing Authentication for Critical Function", Description: "The product does not perform any authentication for functionality that requires a provable user identity or consumes a significant amount of resources."},
	"CWE-311":  {ID: 311, Name: "Missing Encryption of Sensitive Data", Description: "The product does not encrypt sensitive or critical information before storage or transmission."},
	"CWE-319":  {ID: 319, Name: "Cleartext Transmission of Sensitive Information", Description: "The product transmits sensitive or security-critical data in cleartext in a communication channel that can be sniffed by unauthorized actors."},
	"CWE-326":  {ID: 326, Name: "Inadequate Encryption Strength", Description: "The product stores or transmits sensitive data using an encryption scheme that is theoretically sound, but is not strong enough for the level of protection required."},
	"CWE-327":  {ID: 327, Name: "Use of a Broken or Risky Cryptographic Algorithm", Description: "The product uses a broken or risky cryptographic algorithm or protocol."},
	"CWE-352":  {ID: 352, Name: "Cross-Site Request Forgery (CSRF)", Description: "The web application does not, or can not, sufficiently verify whether a request was intentionally provided by the user who sent the request."},
	"CWE-362":  {ID: 362, Name: "Concurrent Execution using Shared Resource with Improper Synchronization ('Race Condition')", Description: "The product contains a concurrent code sequence that requires temporary, exclusive access to a shared resource, but a timing window exists in which the shared resource can be modified by another code sequence operating concurrently."},
	"CWE-400":  {ID: 400, Name: "Uncontrolled Resource Consumption", Description: "The product does not properly control the allocation and maintenance of a limited resource, thereby enabling an actor to influence the amount of resources consumed, eventually leading to the exhaustion of available resources."},
	"CWE-434":  {ID: 434, Name: "Unrestricted Upload of File with Dangerous Type", Description: "The product allows the upload or transfer of dangerous file types that are automatically processed within its environment."},
	"CWE-476":  {ID: 476, Name: "NULL Pointer Dereference", Description: "The product dereferences a pointer that it expects to be valid but is NULL."},
	"CWE-502":  {ID: 502, Name: "Deserialization of Untrusted Data", Description: "The product deserializes untrusted data without sufficiently ensuring that the resulting data will be valid."},
	"CWE-521":  {ID: 521, Name: "Weak Password Requirements", Description: "The product does not require that users should have strong passwords, which makes it easier for attackers to compromise user accounts."},
	"CWE-522":  {ID: 522, Name: "Insufficiently Protected Credentials", Description: "The product transmits or stores authentication credentials, but it uses an insecure method that is susceptible to unauthorized interception and/or retrieval."},
	"CWE-601":  {ID: 601, Name: "URL Redirection to Untrusted Site ('Open Redirect')", Description: "The web application accepts a user-controlled input that specifies a link to an external site, and uses that link in a redirect."},
	"CWE-611":  {ID: 611, Name: "Improper Restriction of XML External Entity Reference", Description: "The product processes an XML document that can contain XML entities with URIs that resolve to documents outside of the intended sphere of control, causing the product to embed incorrect documents into its output."},
	"CWE-613":  {ID: 613, Name: "Insufficient Session Expiration", Description: "According to WASC, insufficient session expiration occurs when a web site permits an attacker to reuse old session credentials or session IDs for authorization."},
	"CWE-639":  {ID: 639, Name: "Authorization Bypass Through User-Controlled Key", Description: "The system's authorization functionality does not prevent one user from gaining access to another user's data or record by modifying the key value identifying the data."},
	"CWE-798":  {ID: 798, Name: "Use of Hard-coded Credentials", Description: "The product contains hard-coded credentials, such as a password or cryptographic key."},
	"CWE-862":  {ID: 862, Name: "Missing Authorization", Description: "The product does not perform an authorization check when an actor attempts to access a resource or perform an action."},
	"CWE-863":  {ID: 863, Name: "Incorrect Authorization", Description: "The product performs an authorization check when an actor attempts to access a resource or perform an action, but it does not correctly perform the check."},
	"CWE-918":  {ID: 918, Name: "Server-Side Request Forgery (SSRF)", Description: "The web server receives a URL or similar request from an upstream component and retrieves the contents of this URL, but it does not sufficiently ensure that the request is being sent to the expected destination."},
	"CWE-1021": {ID: 1021, Name: "Improper Restriction of Rendered UI Layers or Frames", Description: "The web application does not restrict or incorrectly restricts frame objects or UI layers that belong to another application or domain, which can lead to user confusion about which interface the user is interacting with."},
	"CWE-1188": {ID: 1188, Name: "Initialization of a Resource with an Insecure Default", Description: "The product initializes or sets a resource with a default that is intended to be changed by the administrator, but the default is not secure."},
}

// Lookup returns the definition for a canonical "CWE-<id>" key.
func Lookup(key string) (Definition, bool) {
	def, ok := definitions[key]
	return def, ok
}
